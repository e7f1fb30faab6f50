package scrape

import (
	"github.com/leonfoeck/job-matcher/internal/config"
	"github.com/leonfoeck/job-matcher/internal/domain"
	"github.com/leonfoeck/job-matcher/internal/scrape/greenhouse"
	"github.com/leonfoeck/job-matcher/internal/scrape/lever"
	"github.com/leonfoeck/job-matcher/internal/scrape/personio"
	"github.com/leonfoeck/job-matcher/internal/scrape/types"
	"github.com/leonfoeck/job-matcher/internal/scrape/util"
)

// ProviderOrder is the order providers are attempted for every company.
var ProviderOrder = []domain.Source{domain.SourcePersonio, domain.SourceGreenhouse, domain.SourceLever}

// DefaultProviders builds every enabled provider in ProviderOrder, sharing
// one per-host rate limiter.
func DefaultProviders(cfg config.Providers) []types.Provider {
	limiter := util.NewHostLimiter(cfg.RatePerSecond, cfg.Burst)

	var out []types.Provider
	for _, src := range ProviderOrder {
		if !cfg.IsEnabled(string(src)) {
			continue
		}
		switch src {
		case domain.SourcePersonio:
			out = append(out, personio.New(personio.Config{
				FeedURL:       cfg.PersonioFeedURL,
				DetectTimeout: cfg.DetectTimeout(),
				FetchTimeout:  cfg.FetchTimeout(),
			}, limiter))
		case domain.SourceGreenhouse:
			out = append(out, greenhouse.New(greenhouse.Config{
				APIBase:           cfg.GreenhouseAPIBase,
				DetectTimeout:     cfg.DetectTimeout(),
				FetchTimeout:      cfg.FetchTimeout(),
				DetailConcurrency: cfg.DetailConcurrency,
			}, limiter))
		case domain.SourceLever:
			out = append(out, lever.New(lever.Config{
				APIBase:       cfg.LeverAPIBase,
				DetectTimeout: cfg.DetectTimeout(),
				FetchTimeout:  cfg.FetchTimeout(),
			}, limiter))
		}
	}
	return out
}
