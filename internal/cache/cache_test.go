package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonfoeck/job-matcher/internal/domain"
)

func TestBuildKey(t *testing.T) {
	a, ok := buildKey(domain.SourceGreenhouse, "https://www.acme.io/careers")
	require.True(t, ok)
	b, _ := buildKey(domain.SourceGreenhouse, "acme.io")
	assert.Equal(t, a, b, "same domain, same key")
	assert.Regexp(t, `^jobmatcher:match:greenhouse:[0-9a-f]{16}$`, a)

	c, _ := buildKey(domain.SourceLever, "acme.io")
	assert.NotEqual(t, a, c)

	_, ok = buildKey(domain.SourceLever, "  ")
	assert.False(t, ok)
}

func TestCacheRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := New(ctx, url, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	m := domain.ProviderMatch{Provider: domain.SourceLever, Account: "globex", Endpoint: "https://api.lever.co/v0/postings/globex?mode=json"}
	require.NoError(t, c.Set(ctx, m, "https://globex.com"))

	got, ok := c.Get(ctx, domain.SourceLever, "globex.com")
	require.True(t, ok)
	assert.Equal(t, m, *got)

	_, ok = c.Get(ctx, domain.SourceGreenhouse, "globex.com")
	assert.False(t, ok)

	require.NoError(t, c.Forget(ctx, domain.SourceLever, "globex.com"))
	_, ok = c.Get(ctx, domain.SourceLever, "globex.com")
	assert.False(t, ok)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), "not-a-redis-url", time.Minute)
	assert.Error(t, err)
}
