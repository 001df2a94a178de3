package scoring

import (
	"strings"
	"unicode"
)

// Goal vocabularies. Matching is literal substring matching on the
// lower-cased goal text.
var (
	roleKeywords  = []string{"engineer", "developer", "scientist", "analyst", "architect", "manager", "lead"}
	fieldKeywords = []string{"ai", "ml", "machine learning", "data", "web", "mobile", "cloud", "devops", "security"}
)

// alignmentRule awards a point per skill mentioning one of techs when the
// goal mentions goalKeyword.
type alignmentRule struct {
	goalKeyword string
	techs       []string
}

var alignmentRules = []alignmentRule{
	{goalKeyword: "ai", techs: []string{"python", "tensorflow", "pytorch"}},
	{goalKeyword: "web", techs: []string{"javascript", "react", "node"}},
	{goalKeyword: "data", techs: []string{"sql", "pandas", "python"}},
}

// containsAny reports whether text contains any of the terms.
func containsAny(text string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// skillMentions reports whether a lower-cased skill mentions term. Single
// letter terms (the "r" language) must be a whole token of the skill.
func skillMentions(skill, term string) bool {
	if len(term) > 1 {
		return strings.Contains(skill, term)
	}
	for _, tok := range strings.FieldsFunc(skill, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if tok == term {
			return true
		}
	}
	return false
}

// anySkillMentions reports whether any skill mentions any of the terms.
func anySkillMentions(skills []string, terms ...string) bool {
	for _, s := range skills {
		for _, t := range terms {
			if skillMentions(s, t) {
				return true
			}
		}
	}
	return false
}

// lowerAll returns trimmed, lower-cased copies of skills, dropping blanks.
func lowerAll(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}
