package github

import (
	"net/http"
	"strings"
	"time"

	"github.com/caffinecoder/skillnav/pkg/logger"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a GitHub compatible API.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithToken sends an authenticated request, raising the rate limit.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithMaxRepos caps the number of repositories returned per user.
func WithMaxRepos(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= maxPerPage {
			c.maxRepos = n
		}
	}
}

// WithTimeout bounds a single upstream request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCacheTTL sets how long results are reused. Zero disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.cacheTTL = d
		}
	}
}

// WithCacheMaxEntries caps the number of cached users.
func WithCacheMaxEntries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.cacheMax = n
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}
