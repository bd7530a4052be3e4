package stern

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/modoterra/jstern/pkg/core"
	execprov "github.com/modoterra/jstern/pkg/providers/exec"
)

// DefaultBinary is the stern executable looked up on PATH.
const DefaultBinary = "stern"

// ErrNoQuery is returned when no pod query is given.
var ErrNoQuery = errors.New("pod query is required")

// Options configures the stern invocation.
type Options struct {
	Binary    string
	Query     string
	Namespace string
	Context   string
	Since     string
	Tail      int // -1 leaves stern's default
	Extra     []string
}

// Launcher starts stern in raw output mode so every line is exactly what
// the pod logged.
type Launcher struct {
	opts   Options
	logger *slog.Logger
}

// New creates a stern launcher.
func New(opts Options, logger *slog.Logger) *Launcher {
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	return &Launcher{opts: opts, logger: logger}
}

func (l *Launcher) Name() string { return "stern" }

// Args returns the command line passed to stern.
func (l *Launcher) Args() []string {
	args := []string{l.opts.Query, "-o", "raw"}
	if l.opts.Namespace != "" {
		args = append(args, "-n", l.opts.Namespace)
	}
	if l.opts.Context != "" {
		args = append(args, "--context", l.opts.Context)
	}
	if l.opts.Since != "" {
		args = append(args, "--since", l.opts.Since)
	}
	if l.opts.Tail >= 0 {
		args = append(args, "--tail", strconv.Itoa(l.opts.Tail))
	}
	return append(args, l.opts.Extra...)
}

// Launch implements core.Launcher.
func (l *Launcher) Launch(ctx context.Context) (core.Process, error) {
	if l.opts.Query == "" {
		return nil, ErrNoQuery
	}
	p, err := execprov.Start(ctx, execprov.Spec{Name: l.opts.Binary, Args: l.Args()}, l.logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}
