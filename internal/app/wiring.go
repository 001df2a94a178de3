package service

import (
	"context"
	"fmt"

	"github.com/caffinecoder/skillnav/internal/adapters/github"
	"github.com/caffinecoder/skillnav/internal/advisor"
	"github.com/caffinecoder/skillnav/internal/auth"
	"github.com/caffinecoder/skillnav/internal/config"
	"github.com/caffinecoder/skillnav/internal/domain/scoring"
	"github.com/caffinecoder/skillnav/pkg/logger"
)

// NewEngine returns the scoring engine configured by cfg.
func NewEngine(cfg *config.Config) *scoring.Engine {
	return scoring.NewEngine(scoring.WithWeights(cfg.Scoring))
}

// NewAnalyzer returns the advisor configured by cfg. When an AI key is set
// a Gemini generator is attached; the returned func releases it.
func NewAnalyzer(ctx context.Context, cfg *config.Config, log logger.Logger) (*advisor.Advisor, func() error, error) {
	opts := []advisor.Option{
		advisor.WithTimeout(cfg.AI.Timeout),
		advisor.WithScoreBounds(cfg.AI.ScoreMin, cfg.AI.ScoreMax),
		advisor.WithLogger(log),
	}
	closeFn := func() error { return nil }

	if cfg.AIConfigured() {
		gen, err := advisor.NewGeminiGenerator(ctx, cfg.AI.APIKey,
			advisor.WithModel(cfg.AI.Model),
			advisor.WithTemperature(cfg.AI.Temperature),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("ai advisor: %w", err)
		}
		opts = append(opts, advisor.WithGenerator(gen))
		closeFn = gen.Close
		log.Info(ctx, "ai advisor enabled", logger.String("model", gen.Model()))
	}

	return advisor.New(NewEngine(cfg), opts...), closeFn, nil
}

// NewVerifier returns the session verifier configured by cfg.
func NewVerifier(cfg *config.Config) *auth.Verifier {
	return auth.NewVerifier(
		auth.WithProjectID(cfg.Auth.DescopeProjectID),
		auth.WithDemoMode(cfg.Auth.DemoMode),
		auth.WithLeeway(cfg.Auth.Leeway),
	)
}

// NewGitHubClient returns the repository fetcher configured by cfg.
func NewGitHubClient(cfg *config.Config, log logger.Logger) *github.Client {
	return github.NewClient(
		github.WithBaseURL(cfg.GitHub.BaseURL),
		github.WithToken(cfg.GitHub.Token),
		github.WithMaxRepos(cfg.GitHub.MaxRepos),
		github.WithTimeout(cfg.GitHub.Timeout),
		github.WithCacheTTL(cfg.GitHub.CacheTTL),
		github.WithCacheMaxEntries(cfg.GitHub.CacheMaxEntries),
		github.WithLogger(log),
	)
}

// FromConfig returns the Service options described by cfg.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithShardCount(cfg.ShardCount),
		WithJobRetention(cfg.JobRetention),
		WithJobTimeout(cfg.AI.Timeout + cfg.GitHub.Timeout),
	}
}
