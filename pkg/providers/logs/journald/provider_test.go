package journald

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"reflect"
	"testing"

	"github.com/modoterra/jstern/pkg/providers/systemd"
)

func TestArgs(t *testing.T) {
	l := New(Options{Unit: "nginx.service", Lines: 50}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	want := []string{"-f", "-u", "nginx.service", "-o", "cat", "-n", "50"}
	if got := l.Args(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	l = New(Options{Unit: "api", Output: "json", Lines: -3}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	want = []string{"-f", "-u", "api", "-o", "json", "-n", "0"}
	if got := l.Args(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLaunchRequiresUnit(t *testing.T) {
	l := New(Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := l.Launch(context.Background()); !errors.Is(err, ErrNoUnit) {
		t.Errorf("expected ErrNoUnit, got %v", err)
	}
}

func TestLaunchChecksUnit(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	var asked string
	l := New(Options{
		Binary: "true",
		Unit:   "api",
		Check: func(_ context.Context, unit string) (systemd.UnitState, error) {
			asked = unit
			return systemd.UnitState{Name: "api.service", LoadState: "not-found"}, nil
		},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	p, err := l.Launch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	_ = p.Wait()
	if asked != "api" {
		t.Errorf("check asked for %q, want api", asked)
	}
}
