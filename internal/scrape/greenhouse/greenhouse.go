package greenhouse

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

const (
	DefaultAPIBase           = "https://boards-api.greenhouse.io/v1/boards"
	DefaultDetailConcurrency = 6
)

type Config struct {
	APIBase           string // boards-api.greenhouse.io/v1/boards
	DetectTimeout     time.Duration
	FetchTimeout      time.Duration
	DetailConcurrency int
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
	if cfg.DetailConcurrency <= 0 {
		cfg.DetailConcurrency = DefaultDetailConcurrency
	}
	return &Scraper{cfg: cfg, hc: &http.Client{}, limiter: limiter}
}

func (s *Scraper) Name() domain.Source { return domain.SourceGreenhouse }

func (s *Scraper) listURL(board string) string {
	return fmt.Sprintf("%s/%s/jobs", s.cfg.APIBase, url.PathEscape(board))
}

func (s *Scraper) jobURL(board, id string) string {
	return fmt.Sprintf("%s/%s/jobs/%s", s.cfg.APIBase, url.PathEscape(board), url.PathEscape(id))
}

// Detect returns the first board whose job list answers 2xx with a jobs array.
func (s *Scraper) Detect(ctx context.Context, company, website string) (*domain.ProviderMatch, error) {
	for _, slug := range util.SlugCandidates(company, website) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		endpoint := s.listURL(slug)
		res, err := util.GetWithTimeout(ctx, s.hc, s.limiter, endpoint, s.cfg.DetectTimeout)
		if err != nil || !res.OK() {
			continue
		}
		if wire.Validate(wire.GreenhouseList, res.Body) != nil {
			continue
		}
		return &domain.ProviderMatch{Provider: domain.SourceGreenhouse, Account: slug, Endpoint: endpoint}, nil
	}
	return nil, ctx.Err()
}

type jobStub struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	AbsoluteURL string          `json:"absolute_url"`
	Location    *struct {
		Name string `json:"name"`
	} `json:"location"`
	UpdatedAt string `json:"updated_at"`
	CreatedAt string `json:"created_at"`
}

// numericID returns the stub's id when it is a JSON number.
func (j jobStub) numericID() (string, bool) {
	raw := strings.TrimSpace(string(j.ID))
	if raw == "" {
		return "", false
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return "", false
	}
	return raw, true
}

// Fetch lists the board and pulls every job's content, at most
// DetailConcurrency detail requests at a time.
func (s *Scraper) Fetch(ctx context.Context, company, website string, m domain.ProviderMatch) ([]domain.IngestJob, error) {
	endpoint := m.Endpoint
	if endpoint == "" {
		endpoint = s.listURL(m.Account)
	}
	res, err := util.GetWithTimeout(ctx, s.hc, s.limiter, endpoint, s.cfg.FetchTimeout)
	if err != nil {
		log.Printf("[ats:greenhouse] company=%q board=%q err=%v", company, m.Account, err)
		return nil, nil
	}
	if !res.OK() {
		log.Printf("[ats:greenhouse] company=%q board=%q status=%d", company, m.Account, res.Status)
		return nil, nil
	}
	if err := wire.Validate(wire.GreenhouseList, res.Body); err != nil {
		log.Printf("[ats:greenhouse] company=%q board=%q decode err=%v", company, m.Account, err)
		return nil, nil
	}

	var list struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(res.Body, &list); err != nil {
		log.Printf("[ats:greenhouse] company=%q board=%q decode err=%v", company, m.Account, err)
		return nil, nil
	}

	type stub struct {
		jobStub
		id string
	}
	stubs := make([]stub, 0, len(list.Jobs))
	for _, raw := range list.Jobs {
		var j jobStub
		if err := json.Unmarshal(raw, &j); err != nil {
			continue
		}
		if strings.TrimSpace(j.Title) == "" || strings.TrimSpace(j.AbsoluteURL) == "" {
			continue
		}
		id, ok := j.numericID()
		if !ok {
			continue
		}
		stubs = append(stubs, stub{jobStub: j, id: id})
	}

	dom := util.NormalizeDomain(website)
	jobs := util.MapWithLimit(ctx, stubs, s.cfg.DetailConcurrency, func(ctx context.Context, st stub, _ int) domain.IngestJob {
		j := domain.IngestJob{
			Company:  company,
			Domain:   dom,
			Source:   domain.SourceGreenhouse,
			Title:    util.CleanText(st.Title),
			URL:      strings.TrimSpace(st.AbsoluteURL),
			PostedAt: util.FirstNonEmpty(st.UpdatedAt, st.CreatedAt),
			RawText:  s.content(ctx, m.Account, st.id),
		}
		if st.Location != nil {
			j.Location = util.NormalizeLocation(st.Location.Name)
		}
		return j
	})
	return domain.KeepValid(jobs), nil
}

// content fetches one job's description markup. Failures degrade to "".
func (s *Scraper) content(ctx context.Context, board, id string) string {
	res, err := util.GetWithTimeout(ctx, s.hc, s.limiter, s.jobURL(board, id), s.cfg.FetchTimeout)
	if err != nil || !res.OK() {
		return ""
	}
	if wire.Validate(wire.GreenhouseJob, res.Body) != nil {
		return ""
	}
	var detail struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(res.Body, &detail); err != nil || detail.Content == nil {
		return ""
	}
	return util.StripIframes(util.EnsureMarkup(*detail.Content))
}
