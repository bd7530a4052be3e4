package shutdown

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/modoterra/jstern/pkg/pipeline"
	execprov "github.com/modoterra/jstern/pkg/providers/exec"
	"github.com/modoterra/jstern/pkg/query"
)

// fakeProcess is a log source whose output closes when killed.
type fakeProcess struct {
	pr     *io.PipeReader
	pw     *io.PipeWriter
	mu     sync.Mutex
	kills  int
	waited bool
}

func newFakeProcess() *fakeProcess {
	pr, pw := io.Pipe()
	return &fakeProcess{pr: pr, pw: pw}
}

func (f *fakeProcess) Stdout() io.Reader { return f.pr }

func (f *fakeProcess) Kill() error {
	f.mu.Lock()
	f.kills++
	f.mu.Unlock()
	return f.pw.Close()
}

func (f *fakeProcess) Wait() error {
	f.mu.Lock()
	f.waited = true
	f.mu.Unlock()
	return nil
}

func (f *fakeProcess) PID() int { return 4242 }

type nopSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *nopSink) Record(v string) error {
	s.mu.Lock()
	s.lines = append(s.lines, v)
	s.mu.Unlock()
	return nil
}

func (s *nopSink) Raw(line string) error { return s.Record(line) }

type plain struct{}

func (plain) Render(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCancellationFiresOnce(t *testing.T) {
	c := NewCancellation()
	if !c.Fire() {
		t.Fatal("first Fire should deliver")
	}
	if c.Fire() {
		t.Error("second Fire should be dropped")
	}
	select {
	case <-c.Done():
	default:
		t.Fatal("expected notification")
	}
	select {
	case <-c.Done():
		t.Fatal("notification delivered twice")
	default:
	}
}

func TestRegisterNil(t *testing.T) {
	if _, err := Register(nil); !errors.Is(err, ErrNoCancellation) {
		t.Errorf("expected ErrNoCancellation, got %v", err)
	}
}

func TestRegisterSignal(t *testing.T) {
	c := NewCancellation()
	stop, err := Register(c, syscall.SIGUSR1)
	if err != nil {
		t.Fatal(err)
	}
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatal(err)
	}
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("signal did not fire cancellation")
	}
	stop()
	stop()
}

// Cancellation while the reader is blocked kills the process, the reader
// sees the stream close and the join completes.
func TestCoordinatorCancelDuringBlockingRead(t *testing.T) {
	proc := newFakeProcess()
	sink := &nopSink{}
	p := pipeline.New(pipeline.Config{Projection: query.Full()}, plain{}, sink, testLogger())

	joined := make(chan struct{})
	go func() {
		defer close(joined)
		p.Run(proc.Stdout())
	}()

	if _, err := io.WriteString(proc.pw, "\"first\"\n"); err != nil {
		t.Fatal(err)
	}

	c := NewCancellation()
	co := NewCoordinator(c, testLogger())
	if co.State() != StateRunning {
		t.Fatalf("initial state: %s", co.State())
	}

	result := make(chan error, 1)
	go func() { result <- co.Run(proc, joined) }()

	c.Fire()
	select {
	case err := <-result:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not join")
	}

	if co.State() != StateJoined {
		t.Errorf("final state: %s", co.State())
	}
	if proc.kills != 1 || !proc.waited {
		t.Errorf("kills=%d waited=%v", proc.kills, proc.waited)
	}
	if strings.Join(sink.lines, ",") != "first" {
		t.Errorf("printed: %q", sink.lines)
	}
}

func TestCoordinatorStreamEnd(t *testing.T) {
	proc := newFakeProcess()
	joined := make(chan struct{})
	close(joined)

	co := NewCoordinator(NewCancellation(), testLogger())
	if err := co.Run(proc, joined); err != nil {
		t.Fatal(err)
	}
	if co.State() != StateJoined {
		t.Errorf("state: %s", co.State())
	}
	if proc.kills != 1 {
		t.Errorf("kills: %d", proc.kills)
	}
}

func TestCoordinatorIgnoresStreamEndWhenDisabled(t *testing.T) {
	proc := newFakeProcess()
	joined := make(chan struct{})
	close(joined)

	c := NewCancellation()
	co := NewCoordinator(c, testLogger())
	co.SetStopOnStreamEnd(false)

	result := make(chan error, 1)
	go func() { result <- co.Run(proc, joined) }()

	select {
	case <-result:
		t.Fatal("returned before cancellation")
	case <-time.After(50 * time.Millisecond):
	}

	c.Fire()
	select {
	case <-result:
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not return")
	}
}

type failingKill struct{ *fakeProcess }

func (f failingKill) Kill() error {
	f.fakeProcess.Kill()
	return errors.New("permission denied")
}

func TestCoordinatorReportsKillError(t *testing.T) {
	proc := failingKill{newFakeProcess()}
	joined := make(chan struct{})
	close(joined)

	c := NewCancellation()
	c.Fire()
	co := NewCoordinator(c, testLogger())
	co.SetStopOnStreamEnd(false)
	if err := co.Run(proc, joined); err == nil {
		t.Fatal("expected error")
	}
	if co.State() != StateJoined {
		t.Errorf("state: %s", co.State())
	}
}

// runShell streams the output of script through a pipeline and returns
// what the coordinator reports once the run ends.
func runShell(t *testing.T, script string, cancelAfterFirst bool) ([]string, error) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	proc, err := execprov.Start(context.Background(), execprov.Spec{Name: "sh", Args: []string{"-c", script}}, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	c := NewCancellation()
	sink := &nopSink{}
	var first sync.Once
	hooked := &hookSink{nopSink: sink, after: func() {
		if cancelAfterFirst {
			first.Do(func() { c.Fire() })
		}
	}}
	p := pipeline.New(pipeline.Config{Projection: query.Full()}, plain{}, hooked, testLogger())

	joined := make(chan struct{})
	go func() {
		defer close(joined)
		p.Run(proc.Stdout())
	}()

	result := make(chan error, 1)
	go func() { result <- NewCoordinator(c, testLogger()).Run(proc, joined) }()
	select {
	case err := <-result:
		return sink.lines, err
	case <-time.After(10 * time.Second):
		t.Fatal("coordinator did not return")
		return nil, nil
	}
}

type hookSink struct {
	*nopSink
	after func()
}

func (h *hookSink) Record(v string) error {
	err := h.nopSink.Record(v)
	h.after()
	return err
}

func TestCoordinatorReportsFailedSourceExit(t *testing.T) {
	lines, err := runShell(t, `echo '"x"'; exit 3`, false)
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Fatalf("got %v, want exit status 3", err)
	}
	if strings.Join(lines, ",") != "x" {
		t.Errorf("printed: %q", lines)
	}
}

func TestCoordinatorCleanSourceExit(t *testing.T) {
	_, err := runShell(t, `echo '"x"'`, false)
	if err != nil {
		t.Fatalf("got %v, want nil", err)
	}
}

func TestCoordinatorIgnoresExitAfterCancel(t *testing.T) {
	lines, err := runShell(t, `echo '"x"'; exec sleep 30`, true)
	if err != nil {
		t.Fatalf("got %v, want nil after cancellation", err)
	}
	if strings.Join(lines, ",") != "x" {
		t.Errorf("printed: %q", lines)
	}
}
