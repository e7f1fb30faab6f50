package scheduler

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryRunsImmediatelyAndOnTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	done := make(chan struct{})

	go func() {
		Every(ctx, 10*time.Millisecond, "test", func(context.Context) error {
			if runs.Add(1) >= 3 {
				cancel()
			}
			return nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Every did not stop after cancel")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestEveryDisabled(t *testing.T) {
	called := false
	Every(context.Background(), 0, "off", func(context.Context) error {
		called = true
		return nil
	})
	assert.False(t, called)
}

func TestWithFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ingest.lock")
	ran := 0
	task := WithFileLock(path, func(context.Context) error {
		ran++
		return nil
	})

	require.NoError(t, task(context.Background()))
	assert.Equal(t, 1, ran)

	other := flock.New(path)
	ok, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, ok)

	assert.ErrorIs(t, task(context.Background()), ErrRunLocked)
	assert.Equal(t, 1, ran)

	require.NoError(t, other.Unlock())
	require.NoError(t, task(context.Background()))
	assert.Equal(t, 2, ran)
}
