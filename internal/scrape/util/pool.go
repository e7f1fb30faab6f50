package util

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// MapWithLimit applies fn to every item with at most limit calls in flight.
// out[i] always holds fn's result for items[i]. fn reports failure through
// its result value, so one bad item never stops the others.
func MapWithLimit[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T, i int) R) []R {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out
	}
	workers := min(max(limit, 1), len(items))

	var next atomic.Int64
	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			for {
				i := int(next.Add(1) - 1)
				if i >= len(items) {
					return nil
				}
				out[i] = fn(ctx, items[i], i)
			}
		})
	}
	_ = g.Wait()
	return out
}
