package lever

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonfoeck/job-matcher/internal/domain"
)

const globexPostings = `[
	{"text":"Platform Engineer","hostedUrl":"https://jobs.lever.co/globex/abc","createdAt":1714557600000,
	 "categories":{"location":"Munich","commitment":"Full-time"},
	 "descriptionPlain":"Run the platform.","description":"<p>ignored</p>"},
	{"text":"Working Student Marketing","hostedUrl":"https://jobs.lever.co/globex/def",
	 "categories":{"location":"Remote"},"description":"<p>Help <b>us</b></p>"},
	{"text":42},
	{"text":"No url"}
]`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("mode"))
		switch r.URL.Path {
		case "/globex":
			_, _ = w.Write([]byte(globexPostings))
		case "/quiet":
			_, _ = w.Write([]byte(`[]`))
		case "/object":
			_, _ = w.Write([]byte(`{"ok":false}`))
		case "/garbage":
			_, _ = w.Write([]byte(`not json`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDetect(t *testing.T) {
	srv := newServer(t)
	s := New(Config{APIBase: srv.URL}, nil)
	ctx := context.Background()

	m, err := s.Detect(ctx, "globex", "https://globex.com")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, domain.SourceLever, m.Provider)
	assert.Equal(t, "globex", m.Account)
	assert.Equal(t, srv.URL+"/globex?mode=json", m.Endpoint)

	// an empty array is still a live account
	m, err = s.Detect(ctx, "Quiet", "")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "quiet", m.Account)

	m, err = s.Detect(ctx, "Object", "")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestFetch(t *testing.T) {
	srv := newServer(t)
	s := New(Config{APIBase: srv.URL}, nil)

	jobs, err := s.Fetch(context.Background(), "globex", "globex.com", domain.ProviderMatch{Account: "globex"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, domain.IngestJob{
		Company:   "globex",
		Domain:    "globex.com",
		Source:    domain.SourceLever,
		Title:     "Platform Engineer",
		URL:       "https://jobs.lever.co/globex/abc",
		Location:  "Munich",
		Seniority: "Full-time",
		PostedAt:  "2024-05-01T10:00:00Z",
		RawText:   "Run the platform.",
	}, jobs[0])

	assert.Equal(t, "Help us", jobs[1].RawText)
	assert.Equal(t, "", jobs[1].PostedAt)
	assert.Equal(t, "", jobs[1].Seniority)
}

func TestFetchFailures(t *testing.T) {
	srv := newServer(t)
	s := New(Config{APIBase: srv.URL}, nil)
	ctx := context.Background()

	jobs, err := s.Fetch(ctx, "x", "", domain.ProviderMatch{Account: "gone"})
	assert.NoError(t, err)
	assert.Empty(t, jobs)

	jobs, err = s.Fetch(ctx, "x", "", domain.ProviderMatch{Account: "object"})
	assert.NoError(t, err)
	assert.Empty(t, jobs)

	jobs, err = s.Fetch(ctx, "x", "", domain.ProviderMatch{Account: "garbage"})
	assert.NoError(t, err, "undecodable body degrades to no jobs")
	assert.Empty(t, jobs)
}
