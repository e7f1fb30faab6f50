package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWithTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(`{"jobs":[]}`))
		case "/slow":
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	res, err := GetWithTimeout(ctx, srv.Client(), nil, srv.URL+"/ok", time.Second)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.JSONEq(t, `{"jobs":[]}`, string(res.Body))

	res, err = GetWithTimeout(ctx, srv.Client(), nil, srv.URL+"/missing", time.Second)
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, http.StatusNotFound, res.Status)

	_, err = GetWithTimeout(ctx, srv.Client(), nil, srv.URL+"/slow", 30*time.Millisecond)
	assert.Error(t, err)
}

func TestHostLimiter(t *testing.T) {
	var nilLimiter *HostLimiter
	assert.NoError(t, nilLimiter.WaitURL(context.Background(), "https://api.lever.co/v0"))
	assert.Nil(t, NewHostLimiter(0, 1))

	hl := NewHostLimiter(100, 2)
	require.NotNil(t, hl)
	ctx := context.Background()
	require.NoError(t, hl.WaitURL(ctx, "https://api.lever.co/v0/postings/acme"))
	require.NoError(t, hl.WaitURL(ctx, "https://API.lever.co/v0/postings/globex"))
	require.NoError(t, hl.WaitURL(ctx, "https://boards-api.greenhouse.io/v1/boards/acme/jobs"))
	assert.Equal(t, 2, hl.Hosts())
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "Berlin, Germany", NormalizeLocation("Location:  Berlin,  Germany, berlin"))
	assert.Equal(t, "", NormalizeLocation("   "))
	assert.Equal(t, "b", FirstNonEmpty(" ", "b", "c"))
}
