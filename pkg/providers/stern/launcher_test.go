package stern

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/modoterra/jstern/pkg/core"
)

var _ core.Launcher = (*Launcher)(nil)

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"query only", Options{Query: "web", Tail: -1}, []string{"web", "-o", "raw"}},
		{"namespace", Options{Query: "web", Namespace: "prod", Tail: -1}, []string{"web", "-o", "raw", "-n", "prod"}},
		{
			"everything",
			Options{Query: "api-.*", Namespace: "ns", Context: "kind", Since: "5m", Tail: 10, Extra: []string{"--container", "app"}},
			[]string{"api-.*", "-o", "raw", "-n", "ns", "--context", "kind", "--since", "5m", "--tail", "10", "--container", "app"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
			if got := l.Args(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLaunchRequiresQuery(t *testing.T) {
	l := New(Options{Tail: -1}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := l.Launch(context.Background()); !errors.Is(err, ErrNoQuery) {
		t.Errorf("expected ErrNoQuery, got %v", err)
	}
}

func TestLaunchMissingBinary(t *testing.T) {
	l := New(Options{Binary: "jstern-no-such-stern", Query: "web", Tail: -1}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p, err := l.Launch(context.Background())
	if err == nil {
		t.Fatal("expected spawn failure")
	}
	if p != nil {
		t.Errorf("expected nil process, got %v", p)
	}
}
