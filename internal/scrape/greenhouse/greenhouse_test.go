package greenhouse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonfoeck/job-matcher/internal/domain"
)

const acmeList = `{"jobs":[
	{"id":1,"title":"Backend Engineer","absolute_url":"https://boards.greenhouse.io/acme/jobs/1","location":{"name":"Berlin"},"updated_at":"2024-05-01T10:00:00Z","created_at":"2024-04-01T10:00:00Z"},
	{"id":"2","title":"String id is skipped","absolute_url":"https://boards.greenhouse.io/acme/jobs/2"},
	"not an object",
	{"id":3,"title":"Werkstudent Data","absolute_url":"https://boards.greenhouse.io/acme/jobs/3","location":null,"created_at":"2024-04-02T10:00:00Z"},
	{"id":4,"title":"","absolute_url":"https://boards.greenhouse.io/acme/jobs/4"}
]}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/acme/jobs":
			_, _ = w.Write([]byte(acmeList))
		case "/acme/jobs/1":
			_, _ = w.Write([]byte(`{"content":"&lt;p&gt;Build APIs&lt;/p&gt;&lt;iframe src=&quot;x&quot;&gt;&lt;/iframe&gt;"}`))
		case "/acme/jobs/3":
			w.WriteHeader(http.StatusInternalServerError)
		case "/broken/jobs":
			_, _ = w.Write([]byte(`{"jobs": [`))
		case "/empty/jobs":
			_, _ = w.Write([]byte(`{"jobs": []}`))
		case "/notjobs/jobs":
			_, _ = w.Write([]byte(`{"error": "board not found"}`))
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

	m, err := s.Detect(ctx, "Acme", "https://acme.io")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, domain.SourceGreenhouse, m.Provider)
	assert.Equal(t, "acme", m.Account)
	assert.Equal(t, srv.URL+"/acme/jobs", m.Endpoint)

	// a later candidate matches after the joined names 404
	m, err = s.Detect(ctx, "Acme Labs", "https://acme.io")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "acme", m.Account)

	// a 2xx without a jobs array is not a board
	m, err = s.Detect(ctx, "notjobs", "")
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = s.Detect(ctx, "Initech", "https://initech.com")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestDetectCancelled(t *testing.T) {
	srv := newServer(t)
	s := New(Config{APIBase: srv.URL}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, err := s.Detect(ctx, "Acme", "")
	assert.Nil(t, m)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetch(t *testing.T) {
	srv := newServer(t)
	s := New(Config{APIBase: srv.URL}, nil)

	jobs, err := s.Fetch(context.Background(), "acme", "https://www.acme.io", domain.ProviderMatch{Provider: domain.SourceGreenhouse, Account: "acme", Endpoint: srv.URL + "/acme/jobs"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	first := jobs[0]
	assert.Equal(t, "acme", first.Company)
	assert.Equal(t, "acme.io", first.Domain)
	assert.Equal(t, domain.SourceGreenhouse, first.Source)
	assert.Equal(t, "Backend Engineer", first.Title)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/1", first.URL)
	assert.Equal(t, "Berlin", first.Location)
	assert.Equal(t, "2024-05-01T10:00:00Z", first.PostedAt)
	assert.Equal(t, "<p>Build APIs</p>", first.RawText)

	second := jobs[1]
	assert.Equal(t, "Werkstudent Data", second.Title)
	assert.Equal(t, "", second.Location)
	assert.Equal(t, "2024-04-02T10:00:00Z", second.PostedAt)
	assert.Equal(t, "", second.RawText, "failed detail degrades to empty content")
}

func TestFetchFailures(t *testing.T) {
	srv := newServer(t)
	s := New(Config{APIBase: srv.URL}, nil)
	ctx := context.Background()

	jobs, err := s.Fetch(ctx, "x", "", domain.ProviderMatch{Account: "missing", Endpoint: srv.URL + "/missing/jobs"})
	assert.NoError(t, err)
	assert.Empty(t, jobs)

	jobs, err = s.Fetch(ctx, "x", "", domain.ProviderMatch{Account: "empty"})
	assert.NoError(t, err)
	assert.Empty(t, jobs)

	jobs, err = s.Fetch(ctx, "x", "", domain.ProviderMatch{Account: "broken", Endpoint: srv.URL + "/broken/jobs"})
	assert.NoError(t, err, "truncated list degrades to no jobs")
	assert.Empty(t, jobs)
}

func TestFetchSkipsDetailForIncompleteStubs(t *testing.T) {
	var details atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/partial/jobs" {
			_, _ = w.Write([]byte(`{"jobs":[
				{"id":1,"title":"","absolute_url":"https://example.com/1"},
				{"id":2,"title":"No URL","absolute_url":""},
				{"id":3,"title":"   ","absolute_url":"https://example.com/3"},
				{"id":4,"title":"Complete","absolute_url":"https://example.com/4"}
			]}`))
			return
		}
		details.Add(1)
		_, _ = w.Write([]byte(`{"content":"<p>ok</p>"}`))
	}))
	defer srv.Close()

	s := New(Config{APIBase: srv.URL}, nil)
	jobs, err := s.Fetch(context.Background(), "partial", "", domain.ProviderMatch{Account: "partial"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Complete", jobs[0].Title)
	assert.Equal(t, int32(1), details.Load(), "only the complete stub gets a detail request")
}

func TestFetchDetailConcurrency(t *testing.T) {
	const n = 15
	var inFlight, peak atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/big/jobs" {
			parts := make([]string, n)
			for i := range parts {
				parts[i] = fmt.Sprintf(`{"id":%d,"title":"Job %d","absolute_url":"https://example.com/%d"}`, i, i, i)
			}
			_, _ = w.Write([]byte(`{"jobs":[` + strings.Join(parts, ",") + `]}`))
			return
		}
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		id := strings.TrimPrefix(r.URL.Path, "/big/jobs/")
		_, _ = w.Write([]byte(`{"content":"<p>` + id + `</p>"}`))
	}))
	defer srv.Close()

	s := New(Config{APIBase: srv.URL}, nil)
	jobs, err := s.Fetch(context.Background(), "big", "", domain.ProviderMatch{Account: "big"})
	require.NoError(t, err)
	require.Len(t, jobs, n)

	assert.LessOrEqual(t, peak.Load(), int32(DefaultDetailConcurrency))
	for i, j := range jobs {
		assert.Equal(t, fmt.Sprintf("Job %d", i), j.Title)
		assert.Equal(t, fmt.Sprintf("<p>%d</p>", i), j.RawText)
	}
}
