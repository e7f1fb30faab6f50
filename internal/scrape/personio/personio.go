package personio

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leonfoeck/job-matcher/internal/domain"
	"github.com/leonfoeck/job-matcher/internal/scrape/util"
)

const (
	DefaultFeedURL = "https://%s.jobs.personio.de/xml?language=en"
	DefaultJobURL  = "https://%s.jobs.personio.de/job/%s"
)

type Config struct {
	FeedURL       string // printf pattern taking the slug
	JobURL        string // printf pattern taking the slug and the position id
	DetectTimeout time.Duration
	FetchTimeout  time.Duration
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	if cfg.FeedURL == "" {
		cfg.FeedURL = DefaultFeedURL
	}
	if cfg.JobURL == "" {
		cfg.JobURL = DefaultJobURL
	}
	if cfg.DetectTimeout <= 0 {
		cfg.DetectTimeout = util.DetectTimeout
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = util.FetchTimeout
	}
	return &Scraper{cfg: cfg, hc: &http.Client{}, limiter: limiter}
}

func (s *Scraper) Name() domain.Source { return domain.SourcePersonio }

func (s *Scraper) feedURL(slug string) string {
	return fmt.Sprintf(s.cfg.FeedURL, url.PathEscape(slug))
}

// Detect returns the first slug whose XML feed answers 2xx with a body that
// looks like markup.
func (s *Scraper) Detect(ctx context.Context, company, website string) (*domain.ProviderMatch, error) {
	for _, slug := range util.SlugCandidates(company, website) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		endpoint := s.feedURL(slug)
		res, err := util.GetWithTimeout(ctx, s.hc, s.limiter, endpoint, s.cfg.DetectTimeout)
		if err != nil || !res.OK() {
			continue
		}
		if len(bytes.TrimSpace(res.Body)) == 0 || !bytes.Contains(res.Body, []byte("<")) {
			continue
		}
		return &domain.ProviderMatch{Provider: domain.SourcePersonio, Account: slug, Endpoint: endpoint}, nil
	}
	return nil, ctx.Err()
}

func (s *Scraper) Fetch(ctx context.Context, company, website string, m domain.ProviderMatch) ([]domain.IngestJob, error) {
	endpoint := m.Endpoint
	if endpoint == "" {
		endpoint = s.feedURL(m.Account)
	}
	res, err := util.GetWithTimeout(ctx, s.hc, s.limiter, endpoint, s.cfg.FetchTimeout)
	if err != nil {
		log.Printf("[ats:personio] company=%q slug=%q err=%v", company, m.Account, err)
		return nil, nil
	}
	if !res.OK() {
		log.Printf("[ats:personio] company=%q slug=%q status=%d", company, m.Account, res.Status)
		return nil, nil
	}

	positions, err := parsePositions(res.Body)
	if err != nil {
		log.Printf("[ats:personio] company=%q slug=%q decode err=%v", company, m.Account, err)
		return nil, nil
	}

	dom := util.NormalizeDomain(website)
	jobs := make([]domain.IngestJob, 0, len(positions))
	for _, p := range positions {
		jobs = append(jobs, s.job(p, company, dom, m.Account))
	}
	return domain.KeepValid(jobs), nil
}

func (s *Scraper) job(p position, company, dom, slug string) domain.IngestJob {
	id := strings.TrimSpace(p.ID)
	link := util.FirstNonEmpty(p.URL, p.AbsoluteURL)
	if id != "" {
		link = fmt.Sprintf(s.cfg.JobURL, slug, url.PathEscape(id))
	}
	return domain.IngestJob{
		Company:   company,
		Domain:    dom,
		Source:    domain.SourcePersonio,
		Title:     util.CleanText(util.FirstNonEmpty(p.Name, p.Title)),
		URL:       link,
		Location:  util.NormalizeLocation(util.FirstNonEmpty(p.Office, p.Location, p.City)),
		Seniority: util.CleanText(util.FirstNonEmpty(p.Seniority, p.RecruitingCategory)),
		PostedAt:  util.FirstNonEmpty(p.CreatedAt, p.CreatedAtDash, p.Date),
		RawText:   util.SanitizeHTML(p.descriptionHTML()),
	}
}
