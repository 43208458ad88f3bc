package xcmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// InterruptSignal reports which OS signal broke a WaitInterrupted call. A
// caller that needs to tell a genuine interrupt apart from context
// cancellation should check for this type with errors.As rather than
// matching the error string, since the scan driver treats the two cases
// differently: an interrupt asks it to flush a partial result, plain
// cancellation does not.
type InterruptSignal struct {
	Signal os.Signal
}

func (e *InterruptSignal) Error() string { return "received signal: " + e.Signal.String() }

// WaitInterrupted blocks until ctx is done or one of signals (SIGINT and
// SIGTERM by default) arrives, whichever happens first. A delivered signal
// is returned as *InterruptSignal; a canceled ctx is returned as ctx.Err().
func WaitInterrupted(ctx context.Context, signals ...os.Signal) error {
	if signals == nil {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, signals...)
	defer signal.Stop(sigChan)

	select {
	case v := <-sigChan:
		return &InterruptSignal{Signal: v}

	case <-ctx.Done():
		return ctx.Err()
	}
}
