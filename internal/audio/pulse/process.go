package pulse

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"
)

// processNamer resolves the executable name owning a PID.
type processNamer interface {
	Name(ctx context.Context, pid uint32) (string, error)
}

type psutilNamer struct{}

func (psutilNamer) Name(ctx context.Context, pid uint32) (string, error) {
	proc, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return "", err
	}
	return proc.NameWithContext(ctx)
}
