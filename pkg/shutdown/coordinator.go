package shutdown

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync/atomic"
	"syscall"

	"github.com/modoterra/jstern/pkg/core"
)

// State is the coordinator's lifecycle position.
type State int32

const (
	StateRunning State = iota
	StateCancelRequested
	StateTerminating
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCancelRequested:
		return "cancel-requested"
	case StateTerminating:
		return "terminating"
	case StateJoined:
		return "joined"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Coordinator waits for cancellation, kills the log source and joins the
// reader. It never stops the reader directly: killing the process closes
// its output, which ends the reader's blocking read.
type Coordinator struct {
	cancel          *Cancellation
	logger          *slog.Logger
	state           atomic.Int32
	stopOnStreamEnd bool
}

// NewCoordinator creates a coordinator observing c.
func NewCoordinator(c *Cancellation, logger *slog.Logger) *Coordinator {
	return &Coordinator{cancel: c, logger: logger, stopOnStreamEnd: true}
}

// SetStopOnStreamEnd controls whether the reader finishing on its own ends
// Run. When false only the cancellation does.
func (co *Coordinator) SetStopOnStreamEnd(v bool) { co.stopOnStreamEnd = v }

// State returns the current state.
func (co *Coordinator) State() State { return State(co.state.Load()) }

// Run blocks until cancellation (or the end of the stream), then kills proc
// and waits for joined to close. There is no timeout: if the killed process
// does not close its output, Run blocks.
//
// When the stream ended on its own, a failed exit of proc is returned so
// the caller can report it. After a cancellation the exit status is ignored.
func (co *Coordinator) Run(proc core.Process, joined <-chan struct{}) error {
	var streamEnded <-chan struct{}
	if co.stopOnStreamEnd {
		streamEnded = joined
	}

	cancelled := false
	select {
	case <-co.cancel.Done():
		cancelled = true
		co.state.Store(int32(StateCancelRequested))
		co.logger.Info("interrupt received", "pid", proc.PID())
	case <-streamEnded:
		co.logger.Info("log stream ended", "pid", proc.PID())
	}

	co.state.Store(int32(StateTerminating))
	killErr := proc.Kill()
	if killErr != nil {
		co.logger.Error("kill process", "pid", proc.PID(), "err", killErr)
	}

	<-joined
	co.state.Store(int32(StateJoined))

	waitErr := proc.Wait()
	if waitErr != nil {
		co.logger.Debug("process exited", "err", waitErr)
	}
	if killErr != nil {
		return fmt.Errorf("kill process: %w", killErr)
	}
	if !cancelled && waitErr != nil && !killedByUs(waitErr) {
		return fmt.Errorf("log source exited: %w", waitErr)
	}
	return nil
}

// killedByUs reports whether err is the exit status of a process that died
// from the SIGKILL sent by Run.
func killedByUs(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled() && ws.Signal() == syscall.SIGKILL
}
