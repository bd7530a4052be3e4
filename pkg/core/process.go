package core

import (
	"context"
	"io"
)

// Process is a running log source. Stdout yields newline-delimited text
// until the process ends or is killed.
type Process interface {
	// Stdout returns the process's standard output stream.
	Stdout() io.Reader

	// Kill terminates the process immediately. It is safe to call more than
	// once and after the process has exited.
	Kill() error

	// Wait blocks until the process has exited and releases its resources.
	// It must be called only after Stdout has been drained.
	Wait() error

	// PID returns the operating system process ID, or 0 when there is none.
	PID() int
}

// Launcher starts a log source.
type Launcher interface {
	// Name returns the launcher's identifier (e.g., "stern", "journald", "file").
	Name() string

	// Launch starts the source and returns its handle.
	Launch(ctx context.Context) (Process, error)
}
