package scoring

import (
	"fmt"
	"strings"

	"github.com/caffinecoder/skillnav/internal/domain/model"
)

// suggestion is a template emitted unless the profile already has one of
// the skills in unless.
type suggestion struct {
	text   string
	unless []string
}

// bucket groups suggestions for goals mentioning any of its keywords.
type bucket struct {
	name        string
	keywords    []string
	suggestions []suggestion
}

// buckets are evaluated in order; the first match wins.
var buckets = []bucket{
	{
		name:     "ai",
		keywords: []string{"ai", "machine learning", "ml", "data scientist"},
		suggestions: []suggestion{
			{text: "Master Python programming - essential for AI/ML development", unless: []string{"python"}},
			{text: "Learn deep learning frameworks like TensorFlow or PyTorch", unless: []string{"tensorflow", "pytorch"}},
			{text: "Build end-to-end ML projects with real datasets from Kaggle"},
			{text: "Study neural network architectures and implement them from scratch"},
		},
	},
	{
		name:     "web",
		keywords: []string{"web", "frontend", "full stack", "react", "javascript"},
		suggestions: []suggestion{
			{text: "Master modern JavaScript (ES6+) and asynchronous programming", unless: []string{"javascript", "js"}},
			{text: "Learn a modern frontend framework like React, Vue, or Angular", unless: []string{"react", "vue", "angular"}},
			{text: "Build responsive web applications with CSS Grid and Flexbox"},
			{text: "Create full-stack applications with REST APIs and databases"},
		},
	},
	{
		name:     "data",
		keywords: []string{"data", "analyst", "engineer"},
		suggestions: []suggestion{
			{text: "Master SQL and database design for data manipulation", unless: []string{"sql"}},
			{text: "Learn Python or R for statistical analysis and data processing", unless: []string{"python", "r"}},
			{text: "Create interactive dashboards with tools like Tableau or Power BI"},
			{text: "Work with big data technologies like Apache Spark or Hadoop"},
		},
	},
	{
		name:     "mobile",
		keywords: []string{"mobile", "ios", "android", "flutter"},
		suggestions: []suggestion{
			{text: "Build native mobile apps using Swift/Kotlin or cross-platform with Flutter/React Native"},
			{text: "Learn mobile UI/UX design principles and platform guidelines"},
			{text: "Implement mobile-specific features like push notifications and offline storage"},
			{text: "Publish apps to App Store/Google Play and gather user feedback"},
		},
	},
}

// Universal suggestions appended after the bucket ones.
const (
	suggestNoRepos     = "Start building projects and upload them to GitHub to showcase your skills"
	suggestFewRepos    = "Expand your portfolio with more diverse projects to demonstrate versatility"
	suggestBroadSkills = "Develop a broader skill set including both technical and soft skills"

	fewReposThreshold   = 3
	broadSkillThreshold = 5
)

func genericSuggestions(goal string) []string {
	return []string{
		fmt.Sprintf("Build 3-5 substantial projects specifically related to %s", goal),
		"Contribute to open source projects to demonstrate collaboration skills",
		"Network with professionals in your target field through LinkedIn and events",
		"Obtain industry-recognized certifications relevant to your career goal",
	}
}

// Bucket returns the name of the suggestion bucket matching goal, or
// "generic" when none does.
func Bucket(goal string) string {
	if b := matchBucket(strings.ToLower(goal)); b != nil {
		return b.name
	}
	return "generic"
}

func matchBucket(goalLower string) *bucket {
	for i := range buckets {
		if containsAny(goalLower, buckets[i].keywords...) {
			return &buckets[i]
		}
	}
	return nil
}

// GenerateSuggestions returns up to the configured limit of actionable
// suggestions, bucket specific ones first.
func (e *Engine) GenerateSuggestions(goal string, skills []string, repos []model.Repository) []string {
	goal = strings.TrimSpace(goal)
	lowered := lowerAll(skills)

	var out []string
	if b := matchBucket(strings.ToLower(goal)); b != nil {
		for _, s := range b.suggestions {
			if len(s.unless) > 0 && anySkillMentions(lowered, s.unless...) {
				continue
			}
			out = append(out, s.text)
		}
	}
	if len(out) == 0 {
		out = genericSuggestions(goal)
	}

	switch n := len(repos); {
	case n == 0:
		out = append(out, suggestNoRepos)
	case n < fewReposThreshold:
		out = append(out, suggestFewRepos)
	}
	if len(lowered) < broadSkillThreshold {
		out = append(out, suggestBroadSkills)
	}

	if len(out) > e.suggestionLimit {
		out = out[:e.suggestionLimit]
	}
	return out
}
