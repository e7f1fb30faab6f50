package scrape

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/leonfoeck/job-matcher/internal/domain"
	"github.com/leonfoeck/job-matcher/internal/scrape/types"
)

// ErrAlreadyRunning is returned when a run is requested while another one
// in this process has not finished.
var ErrAlreadyRunning = errors.New("ingestion already running")

// RunFunc is the shape of Ingester.Run.
type RunFunc func(ctx context.Context, companies []domain.CompanyInput) (domain.RunResult, error)

// Tracker serialises runs within one process and keeps the last-run
// snapshot served by the status endpoint.
type Tracker struct {
	mu  sync.Mutex
	st  types.ScrapeStatus
	Now func() time.Time
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now().UTC()
}

// Status returns a copy of the current snapshot.
func (t *Tracker) Status() types.ScrapeStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st
}

// Run calls run unless another tracked run is in flight.
func (t *Tracker) Run(ctx context.Context, run RunFunc, companies []domain.CompanyInput) (domain.RunResult, error) {
	t.mu.Lock()
	if t.st.Running {
		t.mu.Unlock()
		return domain.RunResult{}, ErrAlreadyRunning
	}
	t.st.Running = true
	t.st.LastRunAt = t.now().Format(time.RFC3339)
	t.mu.Unlock()

	res, err := run(ctx, companies)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.Running = false
	t.st.LastRunID = res.RunID
	t.st.LastTotal = res.Total()
	if err != nil {
		t.st.LastError = err.Error()
	} else {
		t.st.LastError = ""
		t.st.LastOkAt = t.now().Format(time.RFC3339)
	}
	return res, err
}
