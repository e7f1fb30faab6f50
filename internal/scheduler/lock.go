package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrRunLocked means another process is already running the task.
var ErrRunLocked = errors.New("run already in progress")

// WithFileLock wraps task so that only one process at a time runs it,
// using an advisory lock on path. A busy lock yields ErrRunLocked instead
// of waiting.
func WithFileLock(path string, task Task) Task {
	return func(ctx context.Context) error {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("lock dir: %w", err)
		}
		fl := flock.New(path)
		ok, err := fl.TryLock()
		if err != nil {
			return fmt.Errorf("lock %s: %w", path, err)
		}
		if !ok {
			return ErrRunLocked
		}
		defer fl.Unlock()
		return task(ctx)
	}
}
