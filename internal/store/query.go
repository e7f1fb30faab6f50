package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leonfoeck/job-matcher/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var ErrInvalidQuery = errors.New("invalid query")

// JobQuery filters, sorts and pages ListJobs.
type JobQuery struct {
	Title       string
	Company     string
	Source      string
	DateFrom    string // YYYY-MM-DD or RFC3339, compared against posted_at
	DateTo      string // inclusive; a bare date covers the whole day
	OnlyStudent bool
	Sort        string // "field:dir", e.g. "postedAt:desc"
	Page        int
	Limit       int
}

type PageMeta struct {
	Total     int  `json:"total"`
	Page      int  `json:"page"`
	Limit     int  `json:"limit"`
	PageCount int  `json:"pageCount"`
	HasPrev   bool `json:"hasPrev"`
	HasNext   bool `json:"hasNext"`
}

type JobPage struct {
	Data []domain.JobPost `json:"data"`
	Meta PageMeta         `json:"meta"`
}

func (q JobQuery) normalized() JobQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	return q
}

func (q JobQuery) offset() int { return (q.Page - 1) * q.Limit }

func newMeta(q JobQuery, total int) PageMeta {
	pages := (total + q.Limit - 1) / q.Limit
	return PageMeta{
		Total:     total,
		Page:      q.Page,
		Limit:     q.Limit,
		PageCount: pages,
		HasPrev:   q.Page > 1,
		HasNext:   q.Page < pages,
	}
}

var sortColumns = map[string]string{
	"scrapedAt": "j.scraped_at",
	"postedAt":  "j.posted_at",
	"title":     "j.title",
	"company":   "c.name",
	"location":  "j.location",
	"seniority": "j.seniority",
	"id":        "j.id",
}

// orderBy maps "field:dir" onto a whitelisted ORDER BY clause. Unknown
// fields fall back to scrapedAt desc.
func orderBy(sort string) string {
	field, dir, _ := strings.Cut(strings.TrimSpace(sort), ":")
	col, ok := sortColumns[field]
	if !ok {
		col, dir = "j.scraped_at", "desc"
	}
	switch strings.ToLower(dir) {
	case "asc":
		dir = "ASC"
	default:
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s NULLS LAST, j.id DESC", col, dir)
}

type dialect struct {
	placeholder func(n int) string
	like        string
	timeArg     func(time.Time) any
}

var (
	sqliteDialect = dialect{
		placeholder: func(int) string { return "?" },
		like:        "LIKE",
		timeArg:     func(t time.Time) any { return formatTime(t) },
	}
	postgresDialect = dialect{
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		like:        "ILIKE",
		timeArg:     func(t time.Time) any { return t },
	}
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where renders the filter part of a list query, numbering placeholders
// from 1.
func (d dialect) where(q JobQuery) (string, []any, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return d.placeholder(len(args))
	}
	contains := func(col, v string) {
		conds = append(conds, fmt.Sprintf(`%s %s %s ESCAPE '\'`, col, d.like, arg("%"+likeEscaper.Replace(v)+"%")))
	}

	if v := strings.TrimSpace(q.Title); v != "" {
		contains("j.title", v)
	}
	if v := strings.TrimSpace(q.Company); v != "" {
		contains("c.name", v)
	}
	if v := strings.TrimSpace(q.Source); v != "" {
		conds = append(conds, "c.source = "+arg(strings.ToLower(v)))
	}
	if v := strings.TrimSpace(q.DateFrom); v != "" {
		t, _, err := parseDateBound(v)
		if err != nil {
			return "", nil, fmt.Errorf("%w: dateFrom: %v", ErrInvalidQuery, err)
		}
		conds = append(conds, "j.posted_at >= "+arg(d.timeArg(t)))
	}
	if v := strings.TrimSpace(q.DateTo); v != "" {
		t, dateOnly, err := parseDateBound(v)
		if err != nil {
			return "", nil, fmt.Errorf("%w: dateTo: %v", ErrInvalidQuery, err)
		}
		if dateOnly {
			conds = append(conds, "j.posted_at < "+arg(d.timeArg(t.AddDate(0, 0, 1))))
		} else {
			conds = append(conds, "j.posted_at <= "+arg(d.timeArg(t)))
		}
	}
	if q.OnlyStudent {
		conds = append(conds, `(LOWER(j.title) LIKE '%werkstudent%' OR LOWER(j.title) LIKE '%working student%' OR LOWER(COALESCE(j.seniority, '')) LIKE '%student%')`)
	}

	if len(conds) == 0 {
		return "", args, nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args, nil
}

func parseDateBound(s string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("want YYYY-MM-DD or RFC3339, got %q", s)
	}
	return t.UTC(), false, nil
}

const listColumns = `j.id, j.company_id, j.title, j.url, j.location, j.seniority, j.posted_at, j.raw_text, j.processed, j.scraped_at,
       c.id, c.name, c.domain, c.source, c.created_at, c.updated_at`

const listFrom = `FROM job_posts j JOIN companies c ON c.id = j.company_id`

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func companyName(j domain.IngestJob) string {
	if n := strings.TrimSpace(j.Company); n != "" {
		return n
	}
	if d := strings.TrimSpace(j.Domain); d != "" {
		return d
	}
	return "Unknown"
}
