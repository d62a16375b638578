package adapter

import (
	"errors"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// Launcher opens material documents in an external viewer
type Launcher struct {
	command string   // configured viewer command, empty for system default
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	// start runs the prepared command; replaced in tests
	start func(*exec.Cmd) error
}

// NewLauncher creates a Launcher for the configured viewer
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: command,
		args:    args,
		logger:  logger,
		start:   (*exec.Cmd).Start,
	}
}

// Open opens a document URL in the configured viewer or the system default
func (l *Launcher) Open(url string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("material has no document URL")
	}

	if l.command != "" {
		args := append(append([]string{}, l.args...), url)
		l.logger.Info("launching viewer", "command", l.command, "args", args)
		return l.start(exec.Command(l.command, args...))
	}

	l.logger.Info("launching with system default", "os", runtime.GOOS, "url", url)
	return l.start(defaultOpenCommand(runtime.GOOS, url))
}

// defaultOpenCommand returns the system handler invocation for goos
func defaultOpenCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", url)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", url)
	default:
		// Linux and other Unix-like systems
		return exec.Command("xdg-open", url)
	}
}
