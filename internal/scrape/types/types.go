package types

import (
	"context"

	"github.com/leonfoeck/job-matcher/internal/domain"
)

// Provider is one hosted job-board platform. Detect tries slug candidates
// and returns nil when none resolves; it only errors when ctx is done.
// Fetch returns (nil, nil) when the feed is unreachable, answers non-2xx or
// sends a body it cannot decode. An error from Fetch is unexpected and is
// reported against the (company, provider) pair.
type Provider interface {
	Name() domain.Source
	Detect(ctx context.Context, company, website string) (*domain.ProviderMatch, error)
	Fetch(ctx context.Context, company, website string, m domain.ProviderMatch) ([]domain.IngestJob, error)
}

// Upserter persists fetched jobs.
type Upserter interface {
	UpsertMany(ctx context.Context, jobs []domain.IngestJob) (domain.UpsertResult, error)
}

// ScrapeStatus is the last-run snapshot served by /scrape/status.
type ScrapeStatus struct {
	LastRunID string `json:"last_run_id"`
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastTotal int    `json:"last_total"`
	Running   bool   `json:"running"`
}
