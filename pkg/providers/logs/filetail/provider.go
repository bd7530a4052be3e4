package filetail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/modoterra/jstern/pkg/core"
)

// DefaultPoll is how often a followed file is checked for new data.
const DefaultPoll = 250 * time.Millisecond

// ErrNoPath is returned when no file is given.
var ErrNoPath = errors.New("file path is required")

// Options configures a file source.
type Options struct {
	Path    string
	Follow  bool // keep reading appended data until killed
	FromEnd bool // with Follow, skip existing content
	Poll    time.Duration
}

// Launcher reads a captured log stream from a file.
type Launcher struct {
	opts   Options
	logger *slog.Logger
}

// New creates a file launcher.
func New(opts Options, logger *slog.Logger) *Launcher {
	if opts.Poll <= 0 {
		opts.Poll = DefaultPoll
	}
	return &Launcher{opts: opts, logger: logger}
}

func (l *Launcher) Name() string { return "file" }

// Launch opens the file and starts copying it into the returned process's
// output. Without Follow the output ends at end of file.
func (l *Launcher) Launch(ctx context.Context) (core.Process, error) {
	if l.opts.Path == "" {
		return nil, ErrNoPath
	}
	f, err := os.Open(l.opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.opts.Path, err)
	}
	if l.opts.Follow && l.opts.FromEnd {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return nil, fmt.Errorf("seek %s: %w", l.opts.Path, err)
		}
	}

	subCtx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	p := &process{
		pr:     pr,
		pw:     pw,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		defer f.Close()
		err := l.copy(subCtx, f, pw)
		pw.CloseWithError(err)
		if err != nil && !errors.Is(err, io.ErrClosedPipe) {
			p.err = err
		}
	}()

	l.logger.Info("reading file", "path", l.opts.Path, "follow", l.opts.Follow)
	return p, nil
}

func (l *Launcher) copy(ctx context.Context, f *os.File, w io.Writer) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			return err
		}
		if !l.opts.Follow {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.opts.Poll):
		}

		// Start over when the file was truncated.
		info, serr := f.Stat()
		if serr != nil {
			continue
		}
		pos, _ := f.Seek(0, io.SeekCurrent)
		if info.Size() < pos {
			l.logger.Info("file truncated", "path", l.opts.Path)
			f.Seek(0, io.SeekStart)
		}
	}
}

type process struct {
	pr       *io.PipeReader
	pw       *io.PipeWriter
	cancel   context.CancelFunc
	done     chan struct{}
	err      error
	killOnce sync.Once
}

func (p *process) Stdout() io.Reader { return p.pr }

// Kill stops copying and closes the output.
func (p *process) Kill() error {
	p.killOnce.Do(func() {
		p.cancel()
		p.pw.Close()
	})
	return nil
}

func (p *process) Wait() error {
	<-p.done
	p.cancel()
	return p.err
}

func (p *process) PID() int { return 0 }
