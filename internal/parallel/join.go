package parallel

import (
	"context"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Join2 runs fa and fb concurrently. When both succeed their results are
// returned together. As soon as either fails, Join2 returns that error without
// waiting for the other, whose context is cancelled and whose outcome is
// discarded. The remaining goroutine is reaped in the background once it
// observes the cancellation.
func Join2[A, B any](
	ctx context.Context,
	fa func(context.Context) (A, error),
	fb func(context.Context) (B, error),
) (A, B, error) {
	var (
		a A
		b B
	)

	g, gctx := errgroup.WithContext(ctx)

	var once sync.Once
	failed := make(chan error, 1)
	fail := func(err error) error {
		once.Do(func() { failed <- err })
		return err
	}

	g.Go(func() error {
		v, err := guard(gctx, fa)
		if err != nil {
			return fail(err)
		}
		a = v
		return nil
	})
	g.Go(func() error {
		v, err := guard(gctx, fb)
		if err != nil {
			return fail(err)
		}
		b = v
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var zeroA A
	var zeroB B
	select {
	case err := <-failed:
		return zeroA, zeroB, err
	case err := <-done:
		if err != nil {
			// fail ran before the goroutine returned; report the same error
			// the failed branch would have.
			return zeroA, zeroB, <-failed
		}
		return a, b, nil
	}
}

func guard[T any](ctx context.Context, f func(context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return f(ctx)
}
