package scheduler

import (
	"context"
	"errors"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task once immediately and then on every tick until ctx is done.
// Runs never overlap; a tick that fires while a run is still going is
// dropped. Runs skipped because another process holds the lock are logged
// at info level.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	if interval <= 0 {
		log.Printf("[scheduler:%s] disabled (interval=%s)", name, interval)
		return
	}

	run := func() {
		err := task(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrRunLocked):
			log.Printf("[scheduler:%s] skipped: %v", name, err)
		case errors.Is(err, context.Canceled):
		default:
			log.Printf("[scheduler:%s] error: %v", name, err)
		}
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
