// Package fanout runs a fixed number of independent tasks concurrently and
// collects every outcome, successes and failures alike.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one task.
type Outcome[T any] struct {
	Index int
	Value T
	Err   error
}

// Task is one unit of work; index is its position in the batch.
type Task[T any] func(ctx context.Context, index int) (T, error)

// Settle starts n tasks at once and waits for all of them. A failing task
// never cancels its siblings. Outcomes are returned in task index order.
// limit caps how many tasks run at the same time; limit <= 0 means no cap.
func Settle[T any](ctx context.Context, n, limit int, task Task[T]) []Outcome[T] {
	if n <= 0 {
		return nil
	}

	outcomes := make([]Outcome[T], n)
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			v, err := task(ctx, i)
			outcomes[i] = Outcome[T]{Index: i, Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// Successes returns the values of the successful outcomes, in order.
func Successes[T any](outcomes []Outcome[T]) []T {
	var out []T
	for _, o := range outcomes {
		if o.Err == nil {
			out = append(out, o.Value)
		}
	}
	return out
}

// Errors returns the errors of the failed outcomes, in order.
func Errors[T any](outcomes []Outcome[T]) []error {
	var out []error
	for _, o := range outcomes {
		if o.Err != nil {
			out = append(out, o.Err)
		}
	}
	return out
}
