package denorm

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one task run by Apply.
type Outcome[R any] struct {
	Value R
	Err   error
}

// Apply runs fn for every item concurrently, at most limit at a time
// (limit <= 0 means unbounded), and returns one Outcome per item in input
// order. A failing task never stops its siblings.
func Apply[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) []Outcome[R] {
	outcomes := make([]Outcome[R], len(items))
	if len(items) == 0 {
		return outcomes
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			value, err := fn(ctx, item)
			outcomes[i] = Outcome[R]{Value: value, Err: err}
			return nil // per-task errors live in the outcome
		})
	}
	_ = g.Wait()
	return outcomes
}

// CountOutcomes reduces outcomes to success and failure counts. A success
// counts only when counted(value) is true, so skipped tasks can be left out.
func CountOutcomes[R any](outcomes []Outcome[R], counted func(R) bool) (succeeded, failed int) {
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
		case counted == nil || counted(o.Value):
			succeeded++
		}
	}
	return succeeded, failed
}
