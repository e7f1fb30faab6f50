package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	UserAgent = "JobMatcher/1.0 (+https://github.com/leonfoeck/job-matcher)"

	DetectTimeout = 5 * time.Second
	FetchTimeout  = 8 * time.Second

	maxBodyBytes = 16 << 20
)

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Body   []byte
}

func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// GetWithTimeout performs a GET whose whole lifetime, body read included, is
// bounded by timeout. Non-2xx statuses are not errors; callers check OK.
func GetWithTimeout(ctx context.Context, hc *http.Client, lim *HostLimiter, rawURL string, timeout time.Duration) (*Response, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := lim.WaitURL(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json, application/xml;q=0.9, */*;q=0.8")

	res, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return &Response{Status: res.StatusCode, Body: body}, nil
}
