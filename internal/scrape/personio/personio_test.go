package personio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonfoeck/job-matcher/internal/domain"
)

const initechFeed = `<?xml version="1.0" encoding="UTF-8"?>
<workzag-jobs>
  <position>
    <id>1001</id>
    <office>Hamburg</office>
    <recruitingCategory>Werkstudent</recruitingCategory>
    <name>Werkstudent Software Engineering</name>
    <jobDescriptions>
      <jobDescription>
        <name>Your tasks</name>
        <value><![CDATA[<p onclick="x()">Write Go</p><iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ"></iframe>]]></value>
      </jobDescription>
      <jobDescription>
        <name>Your profile</name>
        <value>&lt;ul&gt;&lt;li&gt;Curious&lt;/li&gt;&lt;/ul&gt;</value>
      </jobDescription>
    </jobDescriptions>
    <createdAt>2024-03-05T09:30:00+00:00</createdAt>
  </position>
  <position>
    <title>Office Manager</title>
    <city>Hamburg</city>
    <url>https://initech.jobs.personio.de/job/legacy</url>
    <date>2024-02-01</date>
    <description>&lt;p&gt;Keep things running&lt;/p&gt;</description>
  </position>
  <position>
    <id>1003</id>
  </position>
</workzag-jobs>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/initech/xml":
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(initechFeed))
		case "/single/xml":
			_, _ = w.Write([]byte(`<position><id>7</id><name>Solo</name></position>`))
		case "/positions/xml":
			_, _ = w.Write([]byte(`<positions><position><id>8</id><title>Listed</title></position></positions>`))
		case "/blank/xml":
			_, _ = w.Write([]byte("   "))
		case "/json/xml":
			_, _ = w.Write([]byte(`{"not":"xml"}`))
		case "/broken/xml":
			_, _ = w.Write([]byte(`<positions><position><id>1</id></positon></positions>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newScraper(srv *httptest.Server) *Scraper {
	return New(Config{FeedURL: srv.URL + "/%s/xml"}, nil)
}

func TestDetect(t *testing.T) {
	srv := newServer(t)
	s := newScraper(srv)
	ctx := context.Background()

	m, err := s.Detect(ctx, "initech", "https://initech.com")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, domain.SourcePersonio, m.Provider)
	assert.Equal(t, "initech", m.Account)
	assert.Equal(t, srv.URL+"/initech/xml", m.Endpoint)

	for _, name := range []string{"blank", "json", "unknown"} {
		m, err := s.Detect(ctx, name, "")
		require.NoError(t, err)
		assert.Nil(t, m, name)
	}
}

func TestFetch(t *testing.T) {
	srv := newServer(t)
	s := newScraper(srv)

	jobs, err := s.Fetch(context.Background(), "initech", "https://www.initech.com", domain.ProviderMatch{Account: "initech"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	first := jobs[0]
	assert.Equal(t, "Werkstudent Software Engineering", first.Title)
	assert.Equal(t, "https://initech.jobs.personio.de/job/1001", first.URL)
	assert.Equal(t, "Hamburg", first.Location)
	assert.Equal(t, "Werkstudent", first.Seniority)
	assert.Equal(t, "2024-03-05T09:30:00+00:00", first.PostedAt)
	assert.Equal(t, "initech.com", first.Domain)
	assert.Equal(t, domain.SourcePersonio, first.Source)
	assert.Contains(t, first.RawText, "<h3>Your tasks</h3>")
	assert.Contains(t, first.RawText, "<p>Write Go</p>")
	assert.Contains(t, first.RawText, "youtube-nocookie.com/embed/dQw4w9WgXcQ")
	assert.Contains(t, first.RawText, "<h3>Your profile</h3><ul><li>Curious</li></ul>")
	assert.NotContains(t, first.RawText, "onclick")

	second := jobs[1]
	assert.Equal(t, "Office Manager", second.Title)
	assert.Equal(t, "https://initech.jobs.personio.de/job/legacy", second.URL)
	assert.Equal(t, "Hamburg", second.Location)
	assert.Equal(t, "2024-02-01", second.PostedAt)
	assert.Equal(t, "<p>Keep things running</p>", second.RawText)
}

func TestFetchRootShapes(t *testing.T) {
	srv := newServer(t)
	s := newScraper(srv)
	ctx := context.Background()

	jobs, err := s.Fetch(ctx, "single", "", domain.ProviderMatch{Account: "single"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Solo", jobs[0].Title)
	assert.Equal(t, "https://single.jobs.personio.de/job/7", jobs[0].URL)

	jobs, err = s.Fetch(ctx, "positions", "", domain.ProviderMatch{Account: "positions"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Listed", jobs[0].Title)
}

func TestFetchFailures(t *testing.T) {
	srv := newServer(t)
	s := newScraper(srv)
	ctx := context.Background()

	jobs, err := s.Fetch(ctx, "x", "", domain.ProviderMatch{Account: "gone"})
	assert.NoError(t, err)
	assert.Empty(t, jobs)

	jobs, err = s.Fetch(ctx, "x", "", domain.ProviderMatch{Account: "broken"})
	assert.NoError(t, err, "mismatched tags degrade to no jobs")
	assert.Empty(t, jobs)
}
