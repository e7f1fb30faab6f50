package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leonfoeck/job-matcher/internal/cache"
	"github.com/leonfoeck/job-matcher/internal/config"
	"github.com/leonfoeck/job-matcher/internal/domain"
	"github.com/leonfoeck/job-matcher/internal/events"
	"github.com/leonfoeck/job-matcher/internal/scheduler"
	"github.com/leonfoeck/job-matcher/internal/scrape"
	"github.com/leonfoeck/job-matcher/internal/scrape/types"
)

// loadConfig resolves the data dir and config file, then layers env vars
// and the companies file on top. It returns the config and its path.
func loadConfig() (config.Config, string, error) {
	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = os.Getenv("JOBMATCHER_DATA_DIR")
	}
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return config.Config{}, "", err
	}

	cfgPath := flagConfigPath
	if cfgPath == "" {
		p, err := config.EnsureUserConfig(dataDir)
		if err != nil {
			return config.Config{}, "", fmt.Errorf("config bootstrap failed: %w", err)
		}
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("config load failed (%s): %w", cfgPath, err)
	}
	config.OverlayEnv(&cfg)
	if flagDataDir != "" || cfg.App.DataDir == "" {
		cfg.App.DataDir = dataDir
	}
	if err := config.OverlayCompanies(&cfg, cfg.Ingest.CompaniesFile); err != nil {
		return config.Config{}, "", err
	}

	normalized, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !vr.OK() {
		return config.Config{}, "", fmt.Errorf("invalid config %s: %v", cfgPath, vr.Errors)
	}
	return normalized, cfgPath, nil
}

func lockPath(cfg config.Config) string {
	return filepath.Join(cfg.App.DataDir, "ingest.lock")
}

// newIngester wires providers, the optional match cache and st. A nil st
// makes a dry-run ingester. The returned func releases the cache.
func newIngester(ctx context.Context, cfg config.Config, st types.Upserter, hub *events.Hub) (*scrape.Ingester, func()) {
	ing := &scrape.Ingester{
		Providers: scrape.DefaultProviders(cfg.Providers),
		Hub:       hub,
	}
	if st != nil {
		ing.Store = st
	}

	cleanup := func() {}
	if cfg.Cache.RedisURL != "" {
		c, err := cache.New(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL())
		if err != nil {
			log.Printf("[cache] disabled: %v", err)
		} else {
			ing.Cache = c
			cleanup = func() { _ = c.Close() }
		}
	}
	return ing, cleanup
}

// lockedRun runs ing under the data dir's ingestion lock so concurrent
// processes never ingest at the same time.
func lockedRun(ing *scrape.Ingester, path string) scrape.RunFunc {
	return func(ctx context.Context, companies []domain.CompanyInput) (domain.RunResult, error) {
		var res domain.RunResult
		err := scheduler.WithFileLock(path, func(ctx context.Context) error {
			var err error
			res, err = ing.Run(ctx, companies)
			return err
		})(ctx)
		return res, err
	}
}
