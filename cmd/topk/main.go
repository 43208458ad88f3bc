// Command topk reads records from stdin and reports the heaviest keys it
// has seen, using one of several bounded-memory counting algorithms. See
// SPEC_FULL.md for the full flag surface and data format.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/vitalvas/topk/xcmd"
	"github.com/vitalvas/topk/xlogger"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fatal(nil, err)
	}

	logger := xlogger.New(xlogger.Config{Level: cfg.LogLevel, LogType: "text"})

	drv, err := newDriver(cfg)
	if err != nil {
		fatal(logger, fmt.Errorf("building counter: %w", err))
	}

	logger.Info("starting scan",
		"algorithm", cfg.Algorithm,
		"type", cfg.CountType,
		"epsilon", cfg.Epsilon,
		"realization", cfg.Realization,
	)

	records, interrupted, err := scanWithInterrupt(os.Stdin, drv, logger, cfg.ProgressInterval)
	if err != nil {
		fatal(logger, fmt.Errorf("reading input: %w", err))
	}

	if interrupted {
		logger.Warn("interrupted, flushing partial results", "records", records)
	}

	printResults(os.Stdout, drv, cfg)

	logger.Info("scan complete", "records", records, "tracked", len(drv.entries()))
}

// scanWithInterrupt runs the scan loop in a cancellable goroutine (package
// xcmd) so a SIGINT/SIGTERM during a long stdin stream still flushes the
// best-effort partial result view, rather than losing all progress. The
// signal-wait goroutine always returns nil to the error group: a genuine
// interrupt is reported back through the interrupted return value instead of
// as a group error, which is reserved for real scan failures. When
// progressInterval is positive, a third goroutine logs the running record
// count on that cadence via xcmd.PeriodicRun.
func scanWithInterrupt(r io.Reader, drv *driver, logger *slog.Logger, progressInterval time.Duration) (records int, interrupted bool, err error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, gctx := xcmd.ErrGroup(ctx)

	var seen atomic.Int64

	group.Go("scan", func(_ context.Context) error {
		defer cancel() // unblock the other goroutines once scanning ends
		n, scanErr := runScan(gctx, r, drv, &seen)
		records = n
		return scanErr
	})

	group.Go("interrupt", func(_ context.Context) error {
		waitErr := xcmd.WaitInterrupted(ctx)
		var sig *xcmd.InterruptSignal
		if !errors.As(waitErr, &sig) {
			return nil // scanning finished on its own; not a real interrupt
		}
		interrupted = true
		logger.Debug("interrupt signal observed", "signal", sig.Signal.String())
		cancel() // stop the scan loop promptly
		return nil
	})

	if progressInterval > 0 {
		group.Go("progress", func(_ context.Context) error {
			runErr := xcmd.PeriodicRun(ctx, func(_ context.Context) error {
				logger.Info("scan progress", "records", seen.Load())
				return nil
			}, progressInterval)
			if errors.Is(runErr, context.Canceled) {
				return nil // scanning finished on its own, not a failure
			}
			return runErr
		})
	}

	err = group.Wait()
	return records, interrupted, err
}

// runScan feeds every line of r to drv.feed until r is exhausted or ctx is
// canceled. Cancellation is not reported as an error: the caller treats a
// canceled scan as a successful, partial result. seen is updated after every
// line so a concurrent progress reporter can read a live count.
func runScan(ctx context.Context, r io.Reader, drv *driver, seen *atomic.Int64) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	records := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return records, nil
		default:
		}
		drv.feed(scanner.Text())
		records++
		seen.Store(int64(records))
	}
	return records, scanner.Err()
}

// printResults writes the support-filtered result view to w: one line per
// surviving entry, "key\tcount\tepsilon" for the Space-Saving algorithms or
// "key\tcount" for exact/sum, in descending count order.
func printResults(w io.Writer, drv *driver, cfg config) {
	total := drv.total()
	threshold := supportThreshold(cfg, total)
	withEpsilon := hasEpsilon(cfg.Algorithm)

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	for _, e := range drv.entries() {
		if e.Count < threshold {
			continue
		}
		if withEpsilon {
			fmt.Fprintf(bw, "%s\t%d\t%d\n", e.Key, e.Count, e.Epsilon)
		} else {
			fmt.Fprintf(bw, "%s\t%d\n", e.Key, e.Count)
		}
	}
}

// fatal logs (if a logger was built) and terminates with exit code 1,
// matching the configuration-error taxonomy: unrecognized flag, unknown
// algorithm, unknown count type, or any parse error on a flag value.
func fatal(logger *slog.Logger, err error) {
	if logger != nil {
		logger.Error(err.Error())
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
