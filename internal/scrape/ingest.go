package scrape

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leonfoeck/job-matcher/internal/domain"
	"github.com/leonfoeck/job-matcher/internal/events"
	"github.com/leonfoeck/job-matcher/internal/scrape/types"
	"github.com/leonfoeck/job-matcher/internal/scrape/util"
)

// MatchCache remembers provider matches between runs so Detect can be
// skipped for companies that were already resolved.
type MatchCache interface {
	Get(ctx context.Context, provider domain.Source, website string) (*domain.ProviderMatch, bool)
	Set(ctx context.Context, m domain.ProviderMatch, website string) error
}

// Ingester runs every provider against every company, stores what it finds,
// and reports one log entry per outcome.
type Ingester struct {
	Providers []types.Provider
	Store     types.Upserter // nil skips persistence (dry run)
	Cache     MatchCache     // optional
	Hub       *events.Hub    // optional

	Now   func() time.Time
	NewID func() string
}

func (in *Ingester) now() time.Time {
	if in.Now != nil {
		return in.Now()
	}
	return time.Now().UTC()
}

// Run processes companies in order. Providers are attempted in their
// configured order and all of them run even after one matches. A failing
// provider only produces an error entry; a storage failure aborts the run
// and is returned together with the entries collected so far.
func (in *Ingester) Run(ctx context.Context, companies []domain.CompanyInput) (domain.RunResult, error) {
	res := domain.RunResult{RunID: in.runID(), StartedAt: in.now(), Results: []domain.Entry{}}
	in.Hub.Emit(res.RunID, events.IngestStarted, map[string]int{"companies": len(companies)})
	log.Printf("[ingest] run=%s start companies=%d providers=%d", res.RunID, len(companies), len(in.Providers))

	for _, c := range companies {
		website := strings.TrimSpace(c.Website)
		if website == "" {
			continue
		}

		name := util.CompanyNameFromURL(website)
		if name == "" {
			name = strings.TrimSpace(c.Name)
		}
		if name == "" {
			name = website
		}
		dom := util.NormalizeDomain(website)

		matched, total := false, 0
		for _, p := range in.Providers {
			entry, n, ok, err := in.attempt(ctx, res.RunID, p, name, website, dom)
			if err != nil {
				res.FinishedAt = in.now()
				in.Hub.Emit(res.RunID, events.IngestFinished, map[string]any{"error": err.Error()})
				return res, err
			}
			if entry != nil {
				res.Results = append(res.Results, *entry)
			}
			if ok {
				matched = true
				total += n
			}
		}
		if !matched {
			res.Results = append(res.Results, domain.NoMatchEntry(name))
		}
		res.Results = append(res.Results, domain.TotalEntry(name, total))
	}

	res.FinishedAt = in.now()
	in.Hub.Emit(res.RunID, events.IngestFinished, map[string]int{"total": res.Total()})
	log.Printf("[ingest] run=%s done total=%d took=%s", res.RunID, res.Total(), res.FinishedAt.Sub(res.StartedAt))
	return res, nil
}

func (in *Ingester) runID() string {
	if in.NewID != nil {
		return in.NewID()
	}
	return uuid.NewString()
}

// attempt runs detect, fetch and store for one (company, provider) pair.
// A nil entry means the provider did not match. Panics inside a provider
// become error entries.
func (in *Ingester) attempt(ctx context.Context, runID string, p types.Provider, name, website, dom string) (entry *domain.Entry, count int, matched bool, storeErr error) {
	src := p.Name()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ingest:%s] company=%q panic=%v", src, name, r)
			e := domain.ErrorEntry(name, src, fmt.Sprint(r))
			entry, count, matched, storeErr = &e, 0, false, nil
		}
	}()

	fail := func(err error) (*domain.Entry, int, bool, error) {
		log.Printf("[ingest:%s] company=%q err=%v", src, name, err)
		in.Hub.Emit(runID, events.ProviderError, map[string]string{"company": name, "provider": string(src), "error": err.Error()})
		e := domain.ErrorEntry(name, src, err.Error())
		return &e, 0, false, nil
	}

	m, err := in.detect(ctx, p, name, website)
	if err != nil {
		return fail(err)
	}
	if m == nil {
		return nil, 0, false, nil
	}

	jobs, err := p.Fetch(ctx, name, website, *m)
	if err != nil {
		return fail(err)
	}
	if dom != "" {
		for i := range jobs {
			jobs[i].Domain = dom
		}
	}

	if in.Store != nil && len(jobs) > 0 {
		up, err := in.Store.UpsertMany(ctx, jobs)
		if err != nil {
			return nil, 0, false, fmt.Errorf("store %s jobs for %q: %w", src, name, err)
		}
		log.Printf("[ingest:%s] company=%q account=%q inserted=%d updated=%d", src, name, m.Account, up.Inserted, up.Updated)
	}

	if in.Cache != nil {
		if err := in.Cache.Set(ctx, *m, website); err != nil {
			log.Printf("[ingest:%s] cache set company=%q err=%v", src, name, err)
		}
	}

	in.Hub.Emit(runID, events.ProviderMatched, map[string]any{"company": name, "provider": src, "account": m.Account, "count": len(jobs)})
	e := domain.MatchEntry(name, src, m.Account, len(jobs))
	return &e, len(jobs), true, nil
}

func (in *Ingester) detect(ctx context.Context, p types.Provider, name, website string) (*domain.ProviderMatch, error) {
	if in.Cache != nil {
		if m, ok := in.Cache.Get(ctx, p.Name(), website); ok {
			return m, nil
		}
	}
	return p.Detect(ctx, name, website)
}
