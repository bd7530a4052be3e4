package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
)

// ErrEmptyCommand is returned when no program is given.
var ErrEmptyCommand = errors.New("empty command")

// Spec describes a process to start.
type Spec struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
}

func (s Spec) String() string {
	return fmt.Sprint(append([]string{s.Name}, s.Args...))
}

// Process is a started child whose standard output is piped back.
// The child runs in its own process group so that Kill reaches anything it
// spawned and a terminal interrupt reaches only us.
type Process struct {
	cmd      *exec.Cmd
	stdout   io.Reader
	logger   *slog.Logger
	killOnce sync.Once
	killErr  error
	waitOnce sync.Once
	waitErr  error
}

// Start launches spec. Standard error is inherited so the child's own
// diagnostics stay visible.
func Start(ctx context.Context, spec Spec, logger *slog.Logger) (*Process, error) {
	if spec.Name == "" {
		return nil, ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return killGroup(cmd.Process.Pid)
	}

	if len(spec.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range spec.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", spec.Name, err)
	}

	logger.Info("process started", "pid", cmd.Process.Pid, "command", spec.String())

	return &Process{
		cmd:    cmd,
		stdout: stdout,
		logger: logger,
	}, nil
}

// Stdout implements core.Process.
func (p *Process) Stdout() io.Reader { return p.stdout }

// PID implements core.Process.
func (p *Process) PID() int { return p.cmd.Process.Pid }

// Kill sends SIGKILL to the process group. Killing a process that already
// exited is not an error.
func (p *Process) Kill() error {
	p.killOnce.Do(func() {
		p.killErr = killGroup(p.cmd.Process.Pid)
		if p.killErr == nil {
			p.logger.Info("process killed", "pid", p.cmd.Process.Pid)
		}
	})
	return p.killErr
}

// Wait reaps the process. It closes the stdout pipe, so call it only once
// the reader has finished.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		p.waitErr = p.cmd.Wait()
		exitCode := -1
		if p.cmd.ProcessState != nil {
			exitCode = p.cmd.ProcessState.ExitCode()
		}
		p.logger.Debug("process exited", "pid", p.cmd.Process.Pid, "exit_code", exitCode)
	})
	return p.waitErr
}

func killGroup(pid int) error {
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
