package xcmd

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitInterrupted(t *testing.T) {
	t.Run("SIGINT is reported as an InterruptSignal", func(t *testing.T) {
		ctx := context.Background()

		done := make(chan error, 1)
		go func() {
			done <- WaitInterrupted(ctx, syscall.SIGINT)
		}()

		time.Sleep(50 * time.Millisecond)

		proc, err := os.FindProcess(os.Getpid())
		require.NoError(t, err)
		require.NoError(t, proc.Signal(syscall.SIGINT))

		select {
		case err := <-done:
			var sig *InterruptSignal
			require.True(t, errors.As(err, &sig))
			assert.Equal(t, syscall.SIGINT, sig.Signal)
			assert.Contains(t, sig.Error(), "interrupt")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for signal")
		}
	})

	t.Run("SIGTERM is reported as an InterruptSignal", func(t *testing.T) {
		ctx := context.Background()

		done := make(chan error, 1)
		go func() {
			done <- WaitInterrupted(ctx, syscall.SIGTERM)
		}()

		time.Sleep(50 * time.Millisecond)

		proc, err := os.FindProcess(os.Getpid())
		require.NoError(t, err)
		require.NoError(t, proc.Signal(syscall.SIGTERM))

		select {
		case err := <-done:
			var sig *InterruptSignal
			require.True(t, errors.As(err, &sig))
			assert.Equal(t, syscall.SIGTERM, sig.Signal)
			assert.Contains(t, sig.Error(), "terminated")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for signal")
		}
	})

	t.Run("uses default signals when nil", func(t *testing.T) {
		ctx := context.Background()

		done := make(chan error, 1)
		go func() {
			done <- WaitInterrupted(ctx)
		}()

		time.Sleep(50 * time.Millisecond)

		proc, err := os.FindProcess(os.Getpid())
		require.NoError(t, err)
		require.NoError(t, proc.Signal(syscall.SIGINT))

		select {
		case err := <-done:
			var sig *InterruptSignal
			require.True(t, errors.As(err, &sig))
			assert.Equal(t, syscall.SIGINT, sig.Signal)
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for signal")
		}
	})

	t.Run("context cancellation is distinguishable from a real interrupt", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- WaitInterrupted(ctx, syscall.SIGINT, syscall.SIGTERM)
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.Error(t, err)
			assert.Equal(t, context.Canceled, err)

			var sig *InterruptSignal
			assert.False(t, errors.As(err, &sig))
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for context cancellation")
		}
	})

	t.Run("stops on context timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := WaitInterrupted(ctx, syscall.SIGINT, syscall.SIGTERM)

		require.Error(t, err)
		assert.Equal(t, context.DeadlineExceeded, err)
	})

	t.Run("handles a custom signal", func(t *testing.T) {
		ctx := context.Background()

		done := make(chan error, 1)
		go func() {
			done <- WaitInterrupted(ctx, syscall.SIGUSR1)
		}()

		time.Sleep(50 * time.Millisecond)

		proc, err := os.FindProcess(os.Getpid())
		require.NoError(t, err)
		require.NoError(t, proc.Signal(syscall.SIGUSR1))

		select {
		case err := <-done:
			var sig *InterruptSignal
			require.True(t, errors.As(err, &sig))
			assert.Equal(t, syscall.SIGUSR1, sig.Signal)
			assert.Contains(t, sig.Error(), "user defined signal 1")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for signal")
		}
	})

	t.Run("handles multiple registered signals", func(t *testing.T) {
		ctx := context.Background()

		done := make(chan error, 1)
		go func() {
			done <- WaitInterrupted(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
		}()

		time.Sleep(50 * time.Millisecond)

		proc, err := os.FindProcess(os.Getpid())
		require.NoError(t, err)
		require.NoError(t, proc.Signal(syscall.SIGUSR1))

		select {
		case err := <-done:
			var sig *InterruptSignal
			require.True(t, errors.As(err, &sig))
			assert.Equal(t, syscall.SIGUSR1, sig.Signal)
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for signal")
		}
	})
}
