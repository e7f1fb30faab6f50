package scrape

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonfoeck/job-matcher/internal/domain"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tr := &Tracker{Now: func() time.Time { return now }}

	ok := func(context.Context, []domain.CompanyInput) (domain.RunResult, error) {
		return domain.RunResult{RunID: "r1", Results: []domain.Entry{domain.TotalEntry("Acme", 3)}}, nil
	}
	_, err := tr.Run(context.Background(), ok, nil)
	require.NoError(t, err)

	st := tr.Status()
	assert.False(t, st.Running)
	assert.Equal(t, "r1", st.LastRunID)
	assert.Equal(t, 3, st.LastTotal)
	assert.Equal(t, "2024-05-01T12:00:00Z", st.LastOkAt)
	assert.Empty(t, st.LastError)

	boom := errors.New("db down")
	fail := func(context.Context, []domain.CompanyInput) (domain.RunResult, error) {
		return domain.RunResult{RunID: "r2"}, boom
	}
	_, err = tr.Run(context.Background(), fail, nil)
	assert.ErrorIs(t, err, boom)

	st = tr.Status()
	assert.Equal(t, "r2", st.LastRunID)
	assert.Equal(t, "db down", st.LastError)
	assert.Equal(t, "2024-05-01T12:00:00Z", st.LastOkAt, "last ok time survives a failure")
}

func TestTrackerRejectsOverlap(t *testing.T) {
	tr := &Tracker{}
	started := make(chan struct{})
	release := make(chan struct{})

	slow := func(context.Context, []domain.CompanyInput) (domain.RunResult, error) {
		close(started)
		<-release
		return domain.RunResult{RunID: "slow"}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := tr.Run(context.Background(), slow, nil)
		done <- err
	}()
	<-started

	assert.True(t, tr.Status().Running)
	_, err := tr.Run(context.Background(), slow, nil)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, tr.Status().Running)
}
