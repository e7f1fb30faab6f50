package domain

import (
	"strings"
	"time"
)

// Source names the recruiting platform a posting was read from.
type Source string

const (
	SourceGreenhouse Source = "greenhouse"
	SourceLever      Source = "lever"
	SourcePersonio   Source = "personio"
)

// CompanyInput is one company handed to an ingestion run. Website is the
// normal form; Name is only set by legacy callers.
type CompanyInput struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Website string `json:"website" yaml:"website"`
}

// IngestJob is the normalized posting every provider adapter produces.
type IngestJob struct {
	Company   string `json:"company"`
	Domain    string `json:"domain,omitempty"`
	Source    Source `json:"source"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Location  string `json:"location,omitempty"`
	Seniority string `json:"seniority,omitempty"`
	PostedAt  string `json:"postedAt,omitempty"` // raw provider date, may be unparsable
	RawText   string `json:"rawText,omitempty"`
}

// Valid reports whether the job carries the two fields storage keys on.
func (j IngestJob) Valid() bool {
	return strings.TrimSpace(j.Title) != "" && strings.TrimSpace(j.URL) != ""
}

// KeepValid drops jobs without a title or URL, preserving order.
func KeepValid(jobs []IngestJob) []IngestJob {
	out := make([]IngestJob, 0, len(jobs))
	for _, j := range jobs {
		if j.Valid() {
			out = append(out, j)
		}
	}
	return out
}

// FormatPostedAt renders a provider timestamp the way IngestJob.PostedAt
// carries it.
func FormatPostedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// JobPost is a persisted posting, unique by URL.
type JobPost struct {
	ID        int64      `json:"id"`
	CompanyID int64      `json:"companyId"`
	Company   *Company   `json:"company,omitempty"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Location  string     `json:"location,omitempty"`
	Seniority string     `json:"seniority,omitempty"`
	PostedAt  *time.Time `json:"postedAt"`
	RawText   string     `json:"rawText"`
	Processed bool       `json:"processed"`
	ScrapedAt time.Time  `json:"scrapedAt"`
}

// UpsertResult summarises one UpsertMany call.
type UpsertResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Total    int `json:"total"`
}
