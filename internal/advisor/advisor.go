// Package advisor produces analyses with a generative model and falls back
// to the deterministic scoring engine whenever the model is unavailable or
// returns something unusable.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/caffinecoder/skillnav/internal/domain/model"
	"github.com/caffinecoder/skillnav/internal/domain/scoring"
	"github.com/caffinecoder/skillnav/pkg/logger"
	"github.com/caffinecoder/skillnav/pkg/metrics"
)

// Fallback reasons reported in logs and metrics.
const (
	ReasonTimeout     = "timeout"
	ReasonError       = "error"
	ReasonInvalidJSON = "invalid_json"
	ReasonSchema      = "schema"
)

const (
	defaultTimeout         = 20 * time.Second
	defaultScoreMin        = 30
	defaultScoreMax        = 95
	defaultSuggestionLimit = 4
)

// Advisor implements scoring.Scorer on top of an optional Generator.
type Advisor struct {
	engine          scoring.Scorer
	gen             Generator
	timeout         time.Duration
	scoreMin        int
	scoreMax        int
	suggestionLimit int
	logger          logger.Logger
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithGenerator enables AI analyses. A nil generator keeps the engine only.
func WithGenerator(g Generator) Option {
	return func(a *Advisor) { a.gen = g }
}

// WithTimeout bounds a single generation call.
func WithTimeout(d time.Duration) Option {
	return func(a *Advisor) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithScoreBounds clamps AI scores to [lo, hi].
func WithScoreBounds(lo, hi int) Option {
	return func(a *Advisor) {
		if lo >= 0 && hi <= 100 && lo <= hi {
			a.scoreMin, a.scoreMax = lo, hi
		}
	}
}

// WithSuggestionLimit caps the number of AI suggestions kept.
func WithSuggestionLimit(n int) Option {
	return func(a *Advisor) {
		if n > 0 {
			a.suggestionLimit = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Advisor) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Advisor backed by engine.
func New(engine scoring.Scorer, opts ...Option) *Advisor {
	a := &Advisor{
		engine:          engine,
		timeout:         defaultTimeout,
		scoreMin:        defaultScoreMin,
		scoreMax:        defaultScoreMax,
		suggestionLimit: defaultSuggestionLimit,
		logger:          logger.Get().Named("advisor"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AIEnabled reports whether a generator is configured.
func (a *Advisor) AIEnabled() bool { return a.gen != nil }

// aiResponse is the decoded model answer.
type aiResponse struct {
	Summary        string          `json:"summary"`
	TopSuggestions []string        `json:"top_suggestions"`
	Score          json.RawMessage `json:"score"`
}

// Analyze implements scoring.Scorer. Only input validation and caller
// cancellation errors are returned; AI failures yield the engine result.
func (a *Advisor) Analyze(ctx context.Context, p model.Profile) (model.Result, error) {
	start := time.Now()
	base, err := a.engine.Analyze(ctx, p)
	if err != nil {
		metrics.RecordScoringError()
		return model.Result{}, err
	}
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)

	if a.gen == nil {
		metrics.RecordAnalysis(string(base.Source), base.Score)
		return base, nil
	}

	res, reason, err := a.generate(ctx, p, base)
	if err != nil {
		metrics.RecordAIFallback(reason)
		metrics.RecordErrorByComponent("advisor", reason)
		a.logger.Warn(ctx, "ai analysis failed, using engine result",
			logger.String("reason", reason),
			logger.Error(err),
		)
		metrics.RecordAnalysis(string(base.Source), base.Score)
		return base, nil
	}
	metrics.RecordAnalysis(string(res.Source), res.Score)
	return res, nil
}

func (a *Advisor) generate(ctx context.Context, p model.Profile, base model.Result) (model.Result, string, error) { //nolint:gocritic // hugeParam: results are small values
	genCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	raw, err := a.gen.GenerateJSON(genCtx, BuildPrompt(p))
	metrics.RecordAILatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			return model.Result{}, ReasonTimeout, err
		}
		return model.Result{}, ReasonError, err
	}

	raw = CleanJSONBlock(raw)
	if !json.Valid([]byte(raw)) {
		return model.Result{}, ReasonInvalidJSON, ErrInvalidJSON
	}
	if err := validateResponse(raw); err != nil {
		return model.Result{}, ReasonSchema, err
	}

	var resp aiResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return model.Result{}, ReasonInvalidJSON, err
	}

	suggestions := make([]string, 0, len(resp.TopSuggestions))
	for _, s := range resp.TopSuggestions {
		if s = strings.TrimSpace(s); s != "" {
			suggestions = append(suggestions, s)
		}
	}
	summary := strings.TrimSpace(resp.Summary)
	if summary == "" {
		return model.Result{}, ReasonSchema, &ValidationError{Errors: []FieldError{
			{Field: "summary", Message: "summary is blank"},
		}}
	}
	if len(suggestions) == 0 {
		return model.Result{}, ReasonSchema, &ValidationError{Errors: []FieldError{
			{Field: "top_suggestions", Message: "all suggestions are blank"},
		}}
	}
	if len(suggestions) > a.suggestionLimit {
		suggestions = suggestions[:a.suggestionLimit]
	}

	// A zero score counts as missing.
	score := base.Score
	var v float64
	if len(resp.Score) > 0 && string(resp.Score) != "null" && json.Unmarshal(resp.Score, &v) == nil && v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
		score = a.clampScore(v)
	}

	return model.Result{
		Score:       score,
		Summary:     summary,
		Suggestions: suggestions,
		Source:      model.SourceAI,
	}, "", nil
}

func (a *Advisor) clampScore(v float64) int {
	s := int(math.Floor(v + 0.5))
	if s < a.scoreMin {
		return a.scoreMin
	}
	if s > a.scoreMax {
		return a.scoreMax
	}
	return s
}
