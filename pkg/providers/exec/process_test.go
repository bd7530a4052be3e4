package exec

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/modoterra/jstern/pkg/core"
)

var _ core.Process = (*Process)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestStartEmptyCommand(t *testing.T) {
	if _, err := Start(context.Background(), Spec{}, testLogger()); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("expected ErrEmptyCommand, got %v", err)
	}
}

func TestStartMissingBinary(t *testing.T) {
	_, err := Start(context.Background(), Spec{Name: "jstern-definitely-missing-binary"}, testLogger())
	if err == nil {
		t.Fatal("expected spawn failure")
	}
}

func TestReadUntilExit(t *testing.T) {
	requireSh(t)
	p, err := Start(context.Background(), Spec{Name: "sh", Args: []string{"-c", "echo $GREETING"}, Env: map[string]string{"GREETING": "hello"}}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	out, err := io.ReadAll(p.Stdout())
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(out)) != "hello" {
		t.Errorf("got %q", out)
	}
	if err := p.Wait(); err != nil {
		t.Errorf("wait: %v", err)
	}
	if err := p.Kill(); err != nil {
		t.Errorf("kill after exit: %v", err)
	}
}

// Killing a process blocked in sleep closes its output and unblocks the reader.
func TestKillUnblocksReader(t *testing.T) {
	requireSh(t)
	p, err := Start(context.Background(), Spec{Name: "sh", Args: []string{"-c", "echo ready; exec sleep 60"}}, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan string)
	go func() {
		b, _ := io.ReadAll(p.Stdout())
		done <- string(b)
	}()

	time.Sleep(100 * time.Millisecond)
	if err := p.Kill(); err != nil {
		t.Fatal(err)
	}

	select {
	case out := <-done:
		if !strings.Contains(out, "ready") {
			t.Errorf("got %q", out)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reader still blocked after kill")
	}
	if err := p.Wait(); err == nil {
		t.Error("expected killed exit status")
	}
}
