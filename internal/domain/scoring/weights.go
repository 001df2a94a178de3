package scoring

import "fmt"

// Weights holds every tunable constant of the readiness formula. The zero
// value is not useful; start from DefaultWeights.
type Weights struct {
	// Base is the starting score before any contribution.
	Base float64 `koanf:"base"`

	// PerSkill and SkillCap bound the skill contribution: min(n*PerSkill, SkillCap).
	PerSkill float64 `koanf:"per_skill"`
	SkillCap float64 `koanf:"skill_cap"`

	// PerRepo and RepoCap bound the repository quantity term.
	PerRepo float64 `koanf:"per_repo"`
	RepoCap float64 `koanf:"repo_cap"`

	// EngagementRate multiplies total stars+forks, capped at EngagementCap.
	EngagementRate float64 `koanf:"engagement_rate"`
	EngagementCap  float64 `koanf:"engagement_cap"`

	// PerLanguage multiplies distinct known languages, capped at DiversityCap.
	PerLanguage  float64 `koanf:"per_language"`
	DiversityCap float64 `koanf:"diversity_cap"`

	// Goal specificity and relevance bonuses.
	TwoWordBonus   float64 `koanf:"two_word_bonus"`
	ThreeWordBonus float64 `koanf:"three_word_bonus"`
	RoleBonus      float64 `koanf:"role_bonus"`
	FieldBonus     float64 `koanf:"field_bonus"`

	// AlignmentCap caps the skill/goal alignment bonus (one point per match).
	AlignmentCap float64 `koanf:"alignment_cap"`

	// Min and Max clamp the final rounded score.
	Min int `koanf:"min"`
	Max int `koanf:"max"`
}

// DefaultWeights returns the canonical readiness constants.
func DefaultWeights() Weights {
	return Weights{
		Base:           20,
		PerSkill:       2.5,
		SkillCap:       25,
		PerRepo:        1.5,
		RepoCap:        15,
		EngagementRate: 0.5,
		EngagementCap:  10,
		PerLanguage:    1.2,
		DiversityCap:   5,
		TwoWordBonus:   5,
		ThreeWordBonus: 3,
		RoleBonus:      7,
		FieldBonus:     5,
		AlignmentCap:   10,
		Min:            30,
		Max:            90,
	}
}

// Validate reports whether the weights describe a usable formula.
func (w Weights) Validate() error {
	named := []struct {
		name string
		v    float64
	}{
		{"base", w.Base},
		{"per_skill", w.PerSkill},
		{"skill_cap", w.SkillCap},
		{"per_repo", w.PerRepo},
		{"repo_cap", w.RepoCap},
		{"engagement_rate", w.EngagementRate},
		{"engagement_cap", w.EngagementCap},
		{"per_language", w.PerLanguage},
		{"diversity_cap", w.DiversityCap},
		{"two_word_bonus", w.TwoWordBonus},
		{"three_word_bonus", w.ThreeWordBonus},
		{"role_bonus", w.RoleBonus},
		{"field_bonus", w.FieldBonus},
		{"alignment_cap", w.AlignmentCap},
	}
	for _, n := range named {
		if n.v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidWeights, n.name)
		}
	}
	if w.Min < 0 || w.Max > 100 {
		return fmt.Errorf("%w: bounds must lie within [0, 100]", ErrInvalidWeights)
	}
	if w.Min > w.Max {
		return fmt.Errorf("%w: min %d exceeds max %d", ErrInvalidWeights, w.Min, w.Max)
	}
	return nil
}
