// Package model contains domain models passed between layers.
package model

import (
	"strings"
)

// UnknownLanguage is the sentinel used when a repository reports no language.
// It is excluded from language diversity counting.
const UnknownLanguage = "Unknown"

// Repository is the subset of repository metadata used for scoring.
type Repository struct {
	Name        string `json:"name"`
	Language    string `json:"language"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	Description string `json:"description,omitempty"`
}

// Profile is the normalized input of a single analysis.
type Profile struct {
	CareerGoal   string       // free text, required
	Skills       []string     // trimmed, non-empty, original case
	Repositories []Repository // normalized, see NormalizeRepository
}

// NewProfile builds a normalized Profile. Skills are trimmed and empties
// dropped; repositories go through NormalizeRepository.
func NewProfile(goal string, skills []string, repos []Repository) Profile {
	p := Profile{
		CareerGoal:   strings.TrimSpace(goal),
		Skills:       make([]string, 0, len(skills)),
		Repositories: make([]Repository, 0, len(repos)),
	}
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			p.Skills = append(p.Skills, s)
		}
	}
	for _, r := range repos {
		p.Repositories = append(p.Repositories, NormalizeRepository(r))
	}
	return p
}

// ParseSkills splits a comma-separated skill list, trimming entries and
// discarding empties. Duplicates are kept.
func ParseSkills(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeRepository enforces the repository invariants: stars and forks
// are never negative and an absent language becomes UnknownLanguage.
func NormalizeRepository(r Repository) Repository {
	r.Name = strings.TrimSpace(r.Name)
	r.Language = strings.TrimSpace(r.Language)
	if r.Language == "" {
		r.Language = UnknownLanguage
	}
	if r.Stars < 0 {
		r.Stars = 0
	}
	if r.Forks < 0 {
		r.Forks = 0
	}
	return r
}

// RepositoryNames returns the repository names in order.
func (p Profile) RepositoryNames() []string {
	names := make([]string, 0, len(p.Repositories))
	for _, r := range p.Repositories {
		names = append(names, r.Name)
	}
	return names
}
