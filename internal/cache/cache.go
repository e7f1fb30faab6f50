package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leonfoeck/job-matcher/internal/domain"
	"github.com/leonfoeck/job-matcher/internal/scrape/util"
)

// Cache remembers which provider account a company website resolved to, so
// later runs can skip slug probing.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at the given URL and returns a Cache.
// URL format: redis://localhost:6379/0
func New(ctx context.Context, redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

// Get returns the cached match for provider and website, if any.
func (c *Cache) Get(ctx context.Context, provider domain.Source, website string) (*domain.ProviderMatch, bool) {
	key, ok := buildKey(provider, website)
	if !ok {
		return nil, false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var m domain.ProviderMatch
	if err := json.Unmarshal(data, &m); err != nil || m.Provider != provider || m.Account == "" {
		return nil, false
	}
	return &m, true
}

// Set stores m for website with the configured TTL.
func (c *Cache) Set(ctx context.Context, m domain.ProviderMatch, website string) error {
	key, ok := buildKey(m.Provider, website)
	if !ok {
		return nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("cache: marshal error: %w", err)
	}

	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Forget drops a cached match, e.g. after the board disappeared.
func (c *Cache) Forget(ctx context.Context, provider domain.Source, website string) error {
	key, ok := buildKey(provider, website)
	if !ok {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// buildKey hashes the normalized domain, falling back to the raw website.
func buildKey(provider domain.Source, website string) (string, bool) {
	id := util.NormalizeDomain(website)
	if id == "" {
		id = strings.ToLower(strings.TrimSpace(website))
	}
	if id == "" || provider == "" {
		return "", false
	}
	hash := sha256.Sum256([]byte(strings.ToLower(string(provider)) + ":" + id))
	return fmt.Sprintf("jobmatcher:match:%s:%x", strings.ToLower(string(provider)), hash[:8]), true
}
