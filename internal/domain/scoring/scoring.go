// Package scoring computes the career readiness score, suggestions and
// summary for a profile.
//
// The Engine is deterministic and holds no mutable state; it is safe for
// concurrent use.
package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/caffinecoder/skillnav/internal/domain/model"
)

const defaultSuggestionLimit = 4

// Scorer turns a profile into a full analysis result.
type Scorer interface {
	// Analyze validates the profile and returns score, summary and suggestions.
	Analyze(ctx context.Context, p model.Profile) (model.Result, error)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights replaces the formula constants. Invalid weights are ignored.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		if w.Validate() == nil {
			e.weights = w
		}
	}
}

// WithSuggestionLimit sets the maximum number of suggestions returned.
func WithSuggestionLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.suggestionLimit = n
		}
	}
}

// Engine implements the readiness formula.
type Engine struct {
	weights         Weights
	suggestionLimit int
}

// NewEngine creates an Engine with DefaultWeights unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		weights:         DefaultWeights(),
		suggestionLimit: defaultSuggestionLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the constants in use.
func (e *Engine) Weights() Weights { return e.weights }

// Breakdown lists each contribution to a score.
type Breakdown struct {
	Base            float64 `json:"base"`
	Skills          float64 `json:"skills"`
	RepoQuantity    float64 `json:"repo_quantity"`
	RepoEngagement  float64 `json:"repo_engagement"`
	RepoDiversity   float64 `json:"repo_diversity"`
	GoalSpecificity float64 `json:"goal_specificity"`
	GoalRole        float64 `json:"goal_role"`
	GoalField       float64 `json:"goal_field"`
	Alignment       float64 `json:"alignment"`
	Raw             float64 `json:"raw"`
	Score           int     `json:"score"`
}

// Explain computes the score and returns every contribution.
func (e *Engine) Explain(p model.Profile) (Breakdown, error) {
	goal := strings.TrimSpace(p.CareerGoal)
	if goal == "" {
		return Breakdown{}, fmt.Errorf("career goal is required: %w", ErrInvalidInput)
	}
	w := e.weights
	goalLower := strings.ToLower(goal)
	skills := lowerAll(p.Skills)

	b := Breakdown{Base: w.Base}

	if n := len(skills); n > 0 {
		b.Skills = math.Min(float64(n)*w.PerSkill, w.SkillCap)
	}

	if n := len(p.Repositories); n > 0 {
		engagement := 0
		languages := make(map[string]struct{}, n)
		for _, r := range p.Repositories {
			r = model.NormalizeRepository(r)
			engagement += r.Stars + r.Forks
			if r.Language != model.UnknownLanguage {
				languages[r.Language] = struct{}{}
			}
		}
		b.RepoQuantity = math.Min(float64(n)*w.PerRepo, w.RepoCap)
		b.RepoEngagement = math.Min(float64(engagement)*w.EngagementRate, w.EngagementCap)
		b.RepoDiversity = math.Min(float64(len(languages))*w.PerLanguage, w.DiversityCap)
	}

	words := len(strings.Fields(goalLower))
	if words >= 2 {
		b.GoalSpecificity += w.TwoWordBonus
	}
	if words >= 3 {
		b.GoalSpecificity += w.ThreeWordBonus
	}
	if containsAny(goalLower, roleKeywords...) {
		b.GoalRole = w.RoleBonus
	}
	if containsAny(goalLower, fieldKeywords...) {
		b.GoalField = w.FieldBonus
	}

	matches := 0
	for _, s := range skills {
		for _, rule := range alignmentRules {
			if strings.Contains(goalLower, rule.goalKeyword) && containsAny(s, rule.techs...) {
				matches++
			}
		}
	}
	b.Alignment = math.Min(float64(matches), w.AlignmentCap)

	b.Raw = b.Base + b.Skills + b.RepoQuantity + b.RepoEngagement + b.RepoDiversity +
		b.GoalSpecificity + b.GoalRole + b.GoalField + b.Alignment
	b.Score = clamp(roundHalfUp(b.Raw), w.Min, w.Max)
	return b, nil
}

// ComputeScore returns the clamped readiness score for p.
func (e *Engine) ComputeScore(p model.Profile) (int, error) {
	b, err := e.Explain(p)
	if err != nil {
		return 0, err
	}
	return b.Score, nil
}

// Analyze implements Scorer.
func (e *Engine) Analyze(ctx context.Context, p model.Profile) (model.Result, error) {
	if err := ctx.Err(); err != nil {
		return model.Result{}, err
	}
	score, err := e.ComputeScore(p)
	if err != nil {
		return model.Result{}, err
	}
	return model.Result{
		Score:       score,
		Summary:     e.GenerateSummary(p.CareerGoal, p.Skills, p.Repositories, score),
		Suggestions: e.GenerateSuggestions(p.CareerGoal, p.Skills, p.Repositories),
		Source:      model.SourceEngine,
	}, nil
}

// roundHalfUp rounds halves towards positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
