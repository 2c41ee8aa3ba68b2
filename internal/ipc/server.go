package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"audioguard/internal/daemon"
	"audioguard/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Audioguard", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun audioguard stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.logger.Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	s.logger.Info("daemon started via IPC",
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.logger.Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = status.PID
	resp.State = status.State
	resp.LockPath = status.LockPath
	resp.PolicyPath = status.PolicyPath
	resp.JournalPath = status.JournalPath
	resp.TargetProcess = status.TargetProcess
	resp.CheckIntervalMs = status.CheckIntervalMs
	resp.NotificationsEnabled = status.NotificationsEnabled
	resp.DeviceCount = status.DeviceCount
	return nil
}

func (s *service) DeviceList(_ DeviceListRequest, resp *DeviceListResponse) error {
	devices := s.daemon.Devices()
	resp.Devices = make([]Device, 0, len(devices))
	for _, device := range devices {
		resp.Devices = append(resp.Devices, Device{
			ID:           device.ID,
			FriendlyName: device.FriendlyName,
			Ignored:      device.Ignored,
		})
	}
	return nil
}

func (s *service) DeviceSetIgnored(req DeviceSetIgnoredRequest, resp *DeviceSetIgnoredResponse) error {
	if req.ID == "" {
		return errors.New("device id is required")
	}
	if err := s.daemon.SetIgnored(req.ID, req.Ignored); err != nil {
		return err
	}
	resp.Updated = true
	s.logger.Info("device ignore flag updated",
		logging.String(logging.FieldEndpoint, req.ID),
		logging.Bool("ignored", req.Ignored))
	return nil
}

func (s *service) SetInterval(req SetIntervalRequest, resp *SetIntervalResponse) error {
	if err := s.daemon.SetInterval(req.IntervalMs); err != nil {
		return err
	}
	resp.IntervalMs = req.IntervalMs
	s.logger.Info("check interval updated", logging.Int("interval_ms", req.IntervalMs))
	return nil
}

func (s *service) SetNotifications(req SetNotificationsRequest, resp *SetNotificationsResponse) error {
	if err := s.daemon.SetNotifications(req.Enabled); err != nil {
		return err
	}
	resp.Enabled = req.Enabled
	s.logger.Info("notifications toggled", logging.Bool("enabled", req.Enabled))
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	entries, err := s.daemon.History(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Entries = make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, HistoryEntry{
			ID:           entry.ID,
			EndpointID:   entry.EndpointID,
			EndpointName: entry.EndpointName,
			Kind:         entry.Kind,
			ProcessName:  entry.ProcessName,
			ProcessID:    entry.ProcessID,
			CreatedAt:    entry.CreatedAt,
		})
	}
	return nil
}

func (s *service) HistoryClear(_ HistoryClearRequest, resp *HistoryClearResponse) error {
	if err := s.daemon.ClearHistory(s.ctx); err != nil {
		return err
	}
	resp.Cleared = true
	s.logger.Info("history cleared",
		logging.String(logging.FieldEventType, "history_clear"))
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
