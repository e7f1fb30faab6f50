package domain

import (
	"encoding/json"
	"time"
)

// EntryKind tells the four result-log shapes apart.
type EntryKind string

const (
	EntryMatch   EntryKind = "match"
	EntryError   EntryKind = "error"
	EntryNoMatch EntryKind = "no_match"
	EntryTotal   EntryKind = "total"
)

// NoProviderNote is the note attached to companies no provider recognised.
const NoProviderNote = "no provider detected"

// Entry is one line of an ingestion run's result log.
type Entry struct {
	Kind     EntryKind
	Company  string
	Provider Source
	Account  string
	Count    int
	Error    string
	Note     string
	Total    int
}

func MatchEntry(company string, p Source, account string, count int) Entry {
	return Entry{Kind: EntryMatch, Company: company, Provider: p, Account: account, Count: count}
}

func ErrorEntry(company string, p Source, msg string) Entry {
	return Entry{Kind: EntryError, Company: company, Provider: p, Error: msg}
}

func NoMatchEntry(company string) Entry {
	return Entry{Kind: EntryNoMatch, Company: company, Note: NoProviderNote}
}

func TotalEntry(company string, total int) Entry {
	return Entry{Kind: EntryTotal, Company: company, Total: total}
}

// MarshalJSON renders the entry in its log shape. The account field is
// named after the provider (board, account or slug) and a no-match entry
// carries an explicit null provider.
func (e Entry) MarshalJSON() ([]byte, error) {
	m := map[string]any{"company": e.Company}
	switch e.Kind {
	case EntryMatch:
		m["provider"] = e.Provider
		m[AccountKey(e.Provider)] = e.Account
		m["count"] = e.Count
	case EntryError:
		m["provider"] = e.Provider
		m["error"] = e.Error
	case EntryNoMatch:
		m["provider"] = nil
		m["count"] = 0
		m["note"] = e.Note
	case EntryTotal:
		m["total"] = e.Total
	}
	return json.Marshal(m)
}

// RunResult is what one ingestion run reports back.
type RunResult struct {
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Results    []Entry   `json:"results"`
}

// Total sums the per-company totals in the log.
func (r RunResult) Total() int {
	n := 0
	for _, e := range r.Results {
		if e.Kind == EntryTotal {
			n += e.Total
		}
	}
	return n
}
