// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New(ctx) to build a Config with defaults, Load(ctx) to layer
//     file and environment on top.
//   - Nested sections map to YAML maps and to "__" in environment keys.
//   - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/caffinecoder/skillnav/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory analysis job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the number of remembered request ids.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the job store.
	ShardCount int `koanf:"shard_count"`

	// JobRetention is how long finished jobs stay queryable.
	JobRetention time.Duration `koanf:"job_retention"`

	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`

	Auth    AuthConfig      `koanf:"auth"`
	GitHub  GitHubConfig    `koanf:"github"`
	AI      AIConfig        `koanf:"ai"`
	Scoring scoring.Weights `koanf:"scoring"`
}

// AuthConfig configures session verification.
type AuthConfig struct {
	// DescopeProjectID is the expected token issuer suffix. Empty disables
	// Descope sessions.
	DescopeProjectID string `koanf:"descope_project_id"`

	// DemoMode accepts demo session tokens and enables POST /auth/demo.
	DemoMode bool `koanf:"demo_mode"`

	// Leeway tolerates clock skew when checking token expiry.
	Leeway time.Duration `koanf:"leeway"`
}

// GitHubConfig configures the public repository fetcher.
type GitHubConfig struct {
	BaseURL  string        `koanf:"base_url"`
	Token    string        `koanf:"token"`
	MaxRepos int           `koanf:"max_repos"`
	Timeout  time.Duration `koanf:"timeout"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
	// CacheMaxEntries caps the number of users whose repositories are cached.
	CacheMaxEntries int `koanf:"cache_max_entries"`
}

// AIConfig configures the optional generative advisor. An empty APIKey
// leaves the engine as the only analysis source.
type AIConfig struct {
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	Temperature float64       `koanf:"temperature"`
	Timeout     time.Duration `koanf:"timeout"`
	ScoreMin    int           `koanf:"score_min"`
	ScoreMax    int           `koanf:"score_max"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":5000",
		QueueSize:    1024,
		WorkerCount:  runtime.NumCPU(),
		DedupeSize:   100_000,
		ShardCount:   8,
		JobRetention: time.Hour,
		CORSOrigins:  []string{"*"},
		Auth: AuthConfig{
			DemoMode: true,
			Leeway:   30 * time.Second,
		},
		GitHub: GitHubConfig{
			BaseURL:         "https://api.github.com",
			MaxRepos:        10,
			Timeout:         10 * time.Second,
			CacheTTL:        5 * time.Minute,
			CacheMaxEntries: 1000,
		},
		AI: AIConfig{
			Model:       "gemini-1.5-flash",
			Temperature: 0.7,
			Timeout:     20 * time.Second,
			ScoreMin:    30,
			ScoreMax:    95,
		},
		Scoring: scoring.DefaultWeights(),
	}
}

// AuthConfigured reports whether Descope sessions can be verified.
func (c *Config) AuthConfigured() bool { return c.Auth.DescopeProjectID != "" }

// AIConfigured reports whether the generative advisor is enabled.
func (c *Config) AIConfigured() bool { return c.AI.APIKey != "" }

// Validate checks value ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	positive := []struct {
		name string
		v    int
	}{
		{"queue_size", c.QueueSize},
		{"worker_count", c.WorkerCount},
		{"shard_count", c.ShardCount},
		{"github.max_repos", c.GitHub.MaxRepos},
		{"github.cache_max_entries", c.GitHub.CacheMaxEntries},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, p.name)
		}
	}
	if c.JobRetention <= 0 {
		return fmt.Errorf("%w: job_retention must be positive", ErrInvalidConfig)
	}
	if c.AI.ScoreMin < 0 || c.AI.ScoreMax > 100 || c.AI.ScoreMin > c.AI.ScoreMax {
		return fmt.Errorf("%w: ai score bounds [%d, %d] are invalid", ErrInvalidConfig, c.AI.ScoreMin, c.AI.ScoreMax)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("%w: ai.temperature must lie within [0, 2]", ErrInvalidConfig)
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("%w: scoring: %w", ErrInvalidConfig, err)
	}
	return nil
}
