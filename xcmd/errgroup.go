package xcmd

import (
	"context"
	"fmt"
	"sync"
)

// Group runs a fixed set of named goroutines and cancels the rest as soon as
// one of them fails. The driver's scan loop, its interrupt watcher, and its
// optional progress reporter are three genuinely distinct stages of one
// scan, so every goroutine started with Go carries a stage name: when Wait
// returns a non-nil error, a caller can tell which stage produced it without
// inspecting goroutine stacks.
type Group struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

// StageError names the Group stage that failed. Unwrap exposes the
// underlying error so callers can still match it with errors.Is/errors.As.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %s", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// ErrGroup returns a new Group and an associated Context derived from ctx.
// The derived Context is canceled when the first stage returns an error, or
// when all stages complete successfully, whichever happens first.
func ErrGroup(ctx context.Context) (*Group, context.Context) {
	ctx, cancel := context.WithCancelCause(ctx)
	return &Group{ctx: ctx, cancel: cancel}, ctx
}

// Go runs f in a new goroutine under the given stage name. The first stage
// to return a non-nil error cancels the group's context; that error is
// wrapped in a StageError naming the stage before it is recorded. All
// subsequent errors, from that stage or any other, are discarded.
func (g *Group) Go(stage string, f func(ctx context.Context) error) {
	g.wg.Add(1)

	go func() {
		defer g.wg.Done()

		if err := f(g.ctx); err != nil {
			g.errOnce.Do(func() {
				g.err = &StageError{Stage: stage, Err: err}
				if g.cancel != nil {
					g.cancel(g.err)
				}
			})
		}
	}()
}

// Wait blocks until every stage started with Go has returned, then returns
// the first non-nil error (if any) among them, wrapped with the name of the
// stage that produced it.
func (g *Group) Wait() error {
	g.wg.Wait()
	if g.cancel != nil {
		g.cancel(nil)
	}
	return g.err
}
