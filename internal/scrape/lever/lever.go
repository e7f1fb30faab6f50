package lever

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leonfoeck/job-matcher/internal/domain"
	"github.com/leonfoeck/job-matcher/internal/scrape/util"
	"github.com/leonfoeck/job-matcher/internal/scrape/wire"
)

const DefaultAPIBase = "https://api.lever.co/v0/postings"

type Config struct {
	APIBase       string // api.lever.co/v0/postings
	DetectTimeout time.Duration
	FetchTimeout  time.Duration
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if cfg.DetectTimeout <= 0 {
		cfg.DetectTimeout = util.DetectTimeout
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = util.FetchTimeout
	}
	return &Scraper{cfg: cfg, hc: &http.Client{}, limiter: limiter}
}

func (s *Scraper) Name() domain.Source { return domain.SourceLever }

func (s *Scraper) postingsURL(account string) string {
	return fmt.Sprintf("%s/%s?mode=json", s.cfg.APIBase, url.PathEscape(account))
}

// Detect returns the first account whose postings endpoint answers 2xx with
// a JSON array. An empty array still counts.
func (s *Scraper) Detect(ctx context.Context, company, website string) (*domain.ProviderMatch, error) {
	for _, slug := range util.SlugCandidates(company, website) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		endpoint := s.postingsURL(slug)
		res, err := util.GetWithTimeout(ctx, s.hc, s.limiter, endpoint, s.cfg.DetectTimeout)
		if err != nil || !res.OK() {
			continue
		}
		if wire.Validate(wire.LeverPostings, res.Body) != nil {
			continue
		}
		return &domain.ProviderMatch{Provider: domain.SourceLever, Account: slug, Endpoint: endpoint}, nil
	}
	return nil, ctx.Err()
}

type posting struct {
	Text       string   `json:"text"` // title
	HostedURL  string   `json:"hostedUrl"`
	CreatedAt  *float64 `json:"createdAt"` // ms epoch
	Categories struct {
		Location   string `json:"location"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	Description      string `json:"description"` // html
	DescriptionPlain string `json:"descriptionPlain"`
}

func (p posting) job(company, dom string) domain.IngestJob {
	j := domain.IngestJob{
		Company:   company,
		Domain:    dom,
		Source:    domain.SourceLever,
		Title:     util.CleanText(p.Text),
		URL:       strings.TrimSpace(p.HostedURL),
		Location:  util.NormalizeLocation(p.Categories.Location),
		Seniority: util.CleanText(p.Categories.Commitment),
		RawText:   strings.TrimSpace(p.DescriptionPlain),
	}
	if j.RawText == "" {
		j.RawText = util.HTMLToText(p.Description)
	}
	if p.CreatedAt != nil && *p.CreatedAt > 0 {
		j.PostedAt = domain.FormatPostedAt(time.UnixMilli(int64(*p.CreatedAt)))
	}
	return j
}

func (s *Scraper) Fetch(ctx context.Context, company, website string, m domain.ProviderMatch) ([]domain.IngestJob, error) {
	endpoint := m.Endpoint
	if endpoint == "" {
		endpoint = s.postingsURL(m.Account)
	}
	res, err := util.GetWithTimeout(ctx, s.hc, s.limiter, endpoint, s.cfg.FetchTimeout)
	if err != nil {
		log.Printf("[ats:lever] company=%q account=%q err=%v", company, m.Account, err)
		return nil, nil
	}
	if !res.OK() {
		log.Printf("[ats:lever] company=%q account=%q status=%d", company, m.Account, res.Status)
		return nil, nil
	}
	if err := wire.Validate(wire.LeverPostings, res.Body); err != nil {
		log.Printf("[ats:lever] company=%q account=%q decode err=%v", company, m.Account, err)
		return nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(res.Body, &raws); err != nil {
		log.Printf("[ats:lever] company=%q account=%q decode err=%v", company, m.Account, err)
		return nil, nil
	}

	dom := util.NormalizeDomain(website)
	jobs := make([]domain.IngestJob, 0, len(raws))
	for _, raw := range raws {
		var p posting
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		jobs = append(jobs, p.job(company, dom))
	}
	return domain.KeepValid(jobs), nil
}
