package advisor

import (
	"fmt"
	"strings"

	"github.com/caffinecoder/skillnav/internal/domain/model"
)

// promptItems caps how many skills and project names are sent.
const promptItems = 10

// BuildPrompt renders the career guide prompt for p.
func BuildPrompt(p model.Profile) string {
	skills := p.Skills
	if len(skills) > promptItems {
		skills = skills[:promptItems]
	}
	names := p.RepositoryNames()
	if len(names) > promptItems {
		names = names[:promptItems]
	}

	var b strings.Builder
	b.WriteString("You are a concise tech career guide.\n")
	fmt.Fprintf(&b, "Goal: %s\n", p.CareerGoal)
	fmt.Fprintf(&b, "Skills: %s\n", strings.Join(skills, ", "))
	fmt.Fprintf(&b, "Projects: %s\n", strings.Join(names, ", "))
	b.WriteString(`
Return strict JSON only in this exact shape:
{
  "summary": "2 short sentences about the user's current position and potential",
  "top_suggestions": ["specific actionable suggestion 1", "specific actionable suggestion 2", "specific actionable suggestion 3"],
  "score": 75
}`)
	return b.String()
}
