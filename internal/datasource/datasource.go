// Package datasource provides the collaborators that feed the pipeline:
// a Yahoo Finance chart client for daily quotes and market-context series,
// RSS and web-page news sources, and concurrent news ingestion.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/creasty/defaults"

	"github.com/seenimoa/fincurator/pkg/models"
)

// ArticleSource is a single news source. Fetch returns whatever articles the
// source currently offers; it must honour ctx cancellation.
type ArticleSource interface {
	// ID returns a stable identifier used in reports and tie-breaks.
	ID() string

	// Fetch retrieves raw articles from the source.
	Fetch(ctx context.Context) ([]models.Article, error)
}

// --- Sentinel errors ---

// ErrSymbolNotFound is returned when a symbol cannot be resolved.
var ErrSymbolNotFound = errors.New("symbol not found")

// ErrRateLimited is returned when a source rate-limits the request.
var ErrRateLimited = errors.New("rate limited by data source")

// ErrNoData is returned when a source answers but carries no usable rows.
var ErrNoData = errors.New("no data returned")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP client ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// HTTPOptions configures the shared client.
type HTTPOptions struct {
	Timeout       time.Duration `mapstructure:"timeout"         default:"30s"`
	UserAgent     string        `mapstructure:"user_agent"`
	RatePerSecond int           `mapstructure:"rate_per_second" default:"5"`
}

// Client is an HTTP client with default headers and token-bucket rate limiting.
type Client struct {
	http      *http.Client
	limiter   *RateLimiter
	userAgent string
}

// NewClient creates a Client, applying defaults to unset options.
func NewClient(opts HTTPOptions) *Client {
	_ = defaults.Set(&opts)
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		limiter:   NewRateLimiter(opts.RatePerSecond, time.Second/time.Duration(opts.RatePerSecond)),
		userAgent: opts.UserAgent,
	}
}

// HTTP exposes the underlying client for libraries that take one.
func (c *Client) HTTP() *http.Client { return c.http }

// Get performs a rate-limited GET with default headers, returning the body.
// The caller is responsible for closing the returned ReadCloser.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Set default headers.
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	// Override/add custom headers.
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP GET %s: %w", url, ErrRateLimited)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, nil
}

// --- Rate limiter ---

// RateLimiter provides simple token-bucket rate limiting.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter holding up to maxTokens tokens,
// adding one token every refillRate.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	if refillRate <= 0 {
		refillRate = time.Second
	}
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refill()
		if rl.tokens > 0 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		rl.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(min(rl.refillRate, 100*time.Millisecond)):
			// Check again after a short sleep.
		}
	}
}

// refill adds tokens based on elapsed time. Must be called with mu held.
func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed >= rl.refillRate {
		periods := int(elapsed / rl.refillRate)
		rl.tokens += periods
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
	}
}
