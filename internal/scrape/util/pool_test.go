package util

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMapWithLimitBoundsConcurrencyAndKeepsOrder(t *testing.T) {
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}

	var inFlight, peak atomic.Int32
	out := MapWithLimit(context.Background(), items, 6, func(_ context.Context, v int, _ int) int {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		// later items finish first
		time.Sleep(time.Duration(20-v) * time.Millisecond)
		inFlight.Add(-1)
		return v * v
	})

	assert.LessOrEqual(t, peak.Load(), int32(6))
	for i, v := range out {
		assert.Equal(t, i*i, v)
	}
}

func TestMapWithLimitEdges(t *testing.T) {
	assert.Empty(t, MapWithLimit(context.Background(), []string{}, 4, func(_ context.Context, s string, _ int) string { return s }))

	// a non-positive limit still processes everything
	out := MapWithLimit(context.Background(), []string{"a", "b"}, 0, func(_ context.Context, s string, i int) string {
		return s + string(rune('0'+i))
	})
	assert.Equal(t, []string{"a0", "b1"}, out)
}
