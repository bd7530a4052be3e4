package journald

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/modoterra/jstern/pkg/core"
	execprov "github.com/modoterra/jstern/pkg/providers/exec"
	"github.com/modoterra/jstern/pkg/providers/systemd"
)

// ErrNoUnit is returned when no systemd unit is given.
var ErrNoUnit = errors.New("unit is required")

// Options configures the journalctl invocation.
type Options struct {
	Binary string
	Unit   string
	Output string // journalctl -o mode; "cat" prints only the message
	Lines  int

	// Check, when set, is asked for the unit's state before following it.
	// A unit that is unknown or inactive is reported but still followed.
	Check func(ctx context.Context, unit string) (systemd.UnitState, error)
}

// Launcher follows the journal of a systemd unit.
type Launcher struct {
	opts   Options
	logger *slog.Logger
}

// New creates a journald launcher.
func New(opts Options, logger *slog.Logger) *Launcher {
	if opts.Binary == "" {
		opts.Binary = "journalctl"
	}
	if opts.Output == "" {
		opts.Output = "cat"
	}
	if opts.Lines < 0 {
		opts.Lines = 0
	}
	return &Launcher{opts: opts, logger: logger}
}

func (l *Launcher) Name() string { return "journald" }

// Args returns the command line passed to journalctl.
func (l *Launcher) Args() []string {
	return []string{"-f", "-u", l.opts.Unit, "-o", l.opts.Output, "-n", strconv.Itoa(l.opts.Lines)}
}

// Launch implements core.Launcher.
func (l *Launcher) Launch(ctx context.Context) (core.Process, error) {
	if l.opts.Unit == "" {
		return nil, ErrNoUnit
	}
	l.checkUnit(ctx)
	p, err := execprov.Start(ctx, execprov.Spec{Name: l.opts.Binary, Args: l.Args()}, l.logger)
	if err != nil {
		return nil, err
	}
	l.logger.Info("following journal", "unit", l.opts.Unit)
	return p, nil
}

func (l *Launcher) checkUnit(ctx context.Context) {
	if l.opts.Check == nil {
		return
	}
	state, err := l.opts.Check(ctx, l.opts.Unit)
	switch {
	case err != nil:
		l.logger.Debug("unit state unavailable", "unit", l.opts.Unit, "error", err)
	case !state.Loaded():
		l.logger.Warn("unit is not loaded; waiting for entries anyway", "unit", state.Name, "load", state.LoadState)
	case !state.Active():
		l.logger.Warn("unit is not running", "unit", state.Name, "active", state.ActiveState, "sub", state.SubState)
	default:
		l.logger.Debug("unit state", "unit", state.Name, "pid", state.MainPID)
	}
}
