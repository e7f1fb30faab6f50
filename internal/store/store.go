package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/leonfoeck/job-matcher/internal/config"
	"github.com/leonfoeck/job-matcher/internal/domain"
	"github.com/leonfoeck/job-matcher/internal/scrape/types"
)

var (
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrNotFound      = errors.New("not found")
)

// JobStore is the persistence surface both backends implement.
type JobStore interface {
	types.Upserter
	FindJob(ctx context.Context, id int64) (*domain.JobPost, error)
	ListJobs(ctx context.Context, q JobQuery) (JobPage, error)
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ JobStore = (*SQLite)(nil)
	_ JobStore = (*Postgres)(nil)
)

// Open connects to the configured backend and migrates it.
func Open(ctx context.Context, cfg config.Config) (JobStore, error) {
	var (
		s   JobStore
		err error
	)
	switch cfg.Storage.Driver {
	case "", config.DriverSQLite:
		s, err = OpenSQLite(cfg.SQLitePath())
	case config.DriverPostgres:
		s, err = OpenPostgres(ctx, cfg.Storage.DatabaseURL, cfg.Storage.KeyringAccount)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}
