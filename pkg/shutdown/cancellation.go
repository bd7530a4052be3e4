package shutdown

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ErrNoCancellation is returned when registering signals without a target.
var ErrNoCancellation = errors.New("no cancellation to notify")

// Cancellation is a one-shot notification. Fire never blocks; only the
// first notification is delivered and Done yields it once.
type Cancellation struct {
	ch chan struct{}
}

// NewCancellation creates an unfired cancellation.
func NewCancellation() *Cancellation {
	return &Cancellation{ch: make(chan struct{}, 1)}
}

// Fire requests cancellation. It reports whether this call delivered the
// notification; later calls are dropped.
func (c *Cancellation) Fire() bool {
	select {
	case c.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Done returns the channel the notification is delivered on.
func (c *Cancellation) Done() <-chan struct{} { return c.ch }

// Register fires c when one of sigs arrives (SIGINT and SIGTERM when none
// are given). The returned stop function unregisters the handler.
func Register(c *Cancellation, sigs ...os.Signal) (stop func(), err error) {
	if c == nil {
		return nil, ErrNoCancellation
	}
	if len(sigs) == 0 {
		sigs = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	sigCh := make(chan os.Signal, 1)
	quit := make(chan struct{})
	signal.Notify(sigCh, sigs...)
	go func() {
		for {
			select {
			case <-sigCh:
				c.Fire()
			case <-quit:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(quit)
		})
	}, nil
}
