package domain

import "time"

// Company owns job posts. Domain is the preferred unique key; rows without
// one are looked up by Name.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProviderMatch confirms that a candidate slug resolved to a live feed.
type ProviderMatch struct {
	Provider Source `json:"provider"`
	Account  string `json:"account"`
	Endpoint string `json:"endpoint"`
}

// AccountKey is the result-log field name each provider reports its
// account identifier under.
func AccountKey(s Source) string {
	switch s {
	case SourceGreenhouse:
		return "board"
	case SourceLever:
		return "account"
	default:
		return "slug"
	}
}
