package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// MaxBudget caps the per-item concurrency regardless of the CPU count.
const MaxBudget = 20

// Budget returns min(runtime.NumCPU(), MaxBudget).
func Budget() int {
	return min(runtime.NumCPU(), MaxBudget)
}

// Result is the outcome of one operation in a MapBounded batch.
type Result[R any] struct {
	Value R
	Err   error
}

// OK reports whether the operation succeeded.
func (r Result[R]) OK() bool { return r.Err == nil }

// PanicError wraps a value recovered from a panicking operation.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// MapBounded applies op to every item with at most limit invocations in
// flight. A failing or panicking invocation only marks its own key; the batch
// always runs to completion and MapBounded returns once every invocation has
// finished. Items whose key repeats are processed once per occurrence and the
// last result wins.
//
// Cancellation of ctx is observed by op; MapBounded itself does not stop
// scheduling, so every item still gets a result.
func MapBounded[T any, K comparable, R any](
	ctx context.Context,
	items []T,
	limit int,
	key func(T) K,
	op func(context.Context, T) (R, error),
) map[K]Result[R] {
	if limit <= 0 {
		limit = 1
	}

	var (
		mu      sync.Mutex
		results = make(map[K]Result[R], len(items))
	)

	// The group context is deliberately not derived: a failing item must not
	// cancel its siblings.
	var g errgroup.Group
	g.SetLimit(limit)

	for _, item := range items {
		g.Go(func() error {
			value, err := guard(ctx, func(ctx context.Context) (R, error) { return op(ctx, item) })
			mu.Lock()
			results[key(item)] = Result[R]{Value: value, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}
