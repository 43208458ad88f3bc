package xcmd

import (
	"context"
	"time"
)

// PeriodicRun calls execute every period until ctx is done or execute
// returns a non-nil error, whichever happens first. The scan driver uses
// this to log a running record count while --progress-interval is set,
// without blocking the scan loop itself.
func PeriodicRun(ctx context.Context, execute func(ctx context.Context) error, period time.Duration) error {
	timer := time.NewTicker(period)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timer.C:
			if err := execute(ctx); err != nil {
				return err
			}
		}
	}
}
