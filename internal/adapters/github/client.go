// Package github fetches public repository metadata used as analysis input.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/caffinecoder/skillnav/internal/domain/model"
	"github.com/caffinecoder/skillnav/pkg/logger"
	"github.com/caffinecoder/skillnav/pkg/metrics"
)

const (
	defaultBaseURL  = "https://api.github.com"
	defaultMaxRepos = 10
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 5 * time.Minute
	defaultCacheMax = 1000
	maxPerPage      = 100
	maxUsernameLen  = 39
	maxBodyBytes    = 4 << 20
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]+(-[A-Za-z0-9]+)*$`)

// ValidUsername reports whether name follows GitHub login rules.
func ValidUsername(name string) bool {
	return len(name) > 0 && len(name) <= maxUsernameLen && usernamePattern.MatchString(name)
}

// Fetcher returns the repositories of a GitHub user.
type Fetcher interface {
	Repositories(ctx context.Context, username string) ([]model.Repository, error)
}

type cacheEntry struct {
	repos   []model.Repository
	expires time.Time
}

// Client talks to the GitHub REST API.
type Client struct {
	baseURL  string
	token    string
	maxRepos int
	timeout  time.Duration
	cacheTTL time.Duration
	cacheMax int
	http     *http.Client
	logger   logger.Logger
	now      func() time.Time

	group     singleflight.Group
	mu        sync.Mutex
	cache     map[string]cacheEntry
	lastSweep time.Time
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  defaultBaseURL,
		maxRepos: defaultMaxRepos,
		timeout:  defaultTimeout,
		cacheTTL: defaultCacheTTL,
		cacheMax: defaultCacheMax,
		http:     http.DefaultClient,
		logger:   logger.Named("github"),
		now:      time.Now,
		cache:    make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiRepository mirrors the fields of GitHub's repository object we read.
type apiRepository struct {
	Name        string  `json:"name"`
	Language    *string `json:"language"`
	Stars       int     `json:"stargazers_count"`
	Forks       int     `json:"forks_count"`
	Description *string `json:"description"`
}

func (r apiRepository) toModel() model.Repository {
	out := model.Repository{Name: r.Name, Stars: r.Stars, Forks: r.Forks}
	if r.Language != nil {
		out.Language = *r.Language
	}
	if r.Description != nil {
		out.Description = *r.Description
	}
	return model.NormalizeRepository(out)
}

// Repositories returns up to the configured number of public repositories
// of username, in GitHub's order.
func (c *Client) Repositories(ctx context.Context, username string) ([]model.Repository, error) {
	username = strings.TrimSpace(username)
	if !ValidUsername(username) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	key := strings.ToLower(username)

	if repos, ok := c.cached(key); ok {
		metrics.RecordGitHubCacheHit()
		return repos, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// Shared by every waiter, so it must outlive any single caller.
		repos, err := c.fetch(context.WithoutCancel(ctx), username)
		if err != nil {
			return nil, err
		}
		c.store(key, repos)
		return repos, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneRepos(res.Val.([]model.Repository)), nil
	}
}

func (c *Client) fetch(ctx context.Context, username string) ([]model.Repository, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=%s",
		c.baseURL, url.PathEscape(username), strconv.Itoa(c.maxRepos))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, &Error{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "skillnav")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordGitHubFetch("error")
		c.logger.Warn(ctx, "github request failed", logger.String("user", username), logger.Error(err))
		return nil, &Error{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		metrics.RecordGitHubFetch("not_found")
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	case http.StatusForbidden, http.StatusTooManyRequests:
		metrics.RecordGitHubFetch("rate_limited")
		c.logger.Warn(ctx, "github rate limited",
			logger.String("user", username),
			logger.String("remaining", resp.Header.Get("X-RateLimit-Remaining")))
		return nil, ErrRateLimited
	default:
		metrics.RecordGitHubFetch("error")
		return nil, &Error{URL: endpoint, Status: resp.StatusCode}
	}

	var raw []apiRepository
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&raw); err != nil {
		metrics.RecordGitHubFetch("error")
		return nil, &Error{URL: endpoint, Err: fmt.Errorf("decode repositories: %w", err)}
	}

	if len(raw) > c.maxRepos {
		raw = raw[:c.maxRepos]
	}
	repos := make([]model.Repository, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, r.toModel())
	}

	metrics.RecordGitHubFetch("ok")
	c.logger.Debug(ctx, "fetched repositories",
		logger.String("user", username),
		logger.Int("count", len(repos)),
		logger.Duration("took", time.Since(start)))
	return repos, nil
}

func (c *Client) cached(key string) ([]model.Repository, bool) {
	if c.cacheTTL == 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.cache, key)
		return nil, false
	}
	return cloneRepos(e.repos), true
}

// store caches repos under key. Expired entries are swept at most once per
// TTL, or whenever the cache is full; a full cache then drops the entry
// closest to expiry.
func (c *Client) store(key string, repos []model.Repository) {
	if c.cacheTTL == 0 {
		return
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	_, exists := c.cache[key]
	full := !exists && len(c.cache) >= c.cacheMax
	if full || now.Sub(c.lastSweep) >= c.cacheTTL {
		for k, e := range c.cache {
			if !now.Before(e.expires) {
				delete(c.cache, k)
			}
		}
		c.lastSweep = now
	}
	if !exists && len(c.cache) >= c.cacheMax {
		c.evictSoonestLocked()
	}
	c.cache[key] = cacheEntry{repos: repos, expires: now.Add(c.cacheTTL)}
}

func (c *Client) evictSoonestLocked() {
	var (
		victim string
		soon   time.Time
	)
	for k, e := range c.cache {
		if victim == "" || e.expires.Before(soon) {
			victim, soon = k, e.expires
		}
	}
	delete(c.cache, victim)
}

// cacheLen returns the number of cached users.
func (c *Client) cacheLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

func cloneRepos(in []model.Repository) []model.Repository {
	out := make([]model.Repository, len(in))
	copy(out, in)
	return out
}
