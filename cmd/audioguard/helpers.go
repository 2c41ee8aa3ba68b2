package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\033[0m"
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
)

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// runningLabel tints the daemon state when writing to a terminal.
func runningLabel(running bool, colorize bool) string {
	label := yesNo(running)
	if !colorize {
		return label
	}
	if running {
		return ansiGreen + label + ansiReset
	}
	return ansiRed + label + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
