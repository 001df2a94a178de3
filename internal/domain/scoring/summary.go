package scoring

import (
	"fmt"
	"strings"

	"github.com/caffinecoder/skillnav/internal/domain/model"
)

// Summary thresholds.
const (
	tierStrong   = 80
	tierSolid    = 65
	tierOnTrack  = 50
	manyRepos    = 5
	manySkills   = 8
	enoughSkills = 5
)

// GenerateSummary composes a one paragraph assessment: opener with score
// tier, then a project clause, then a skills clause.
func (e *Engine) GenerateSummary(goal string, skills []string, repos []model.Repository, score int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on your goal of becoming a %s, ", strings.TrimSpace(goal))

	switch {
	case score >= tierStrong:
		b.WriteString("you're well-positioned with strong foundations. ")
	case score >= tierSolid:
		b.WriteString("you have solid potential with room for strategic growth. ")
	case score >= tierOnTrack:
		b.WriteString("you're on the right track but need focused development. ")
	default:
		b.WriteString("you're beginning your journey with significant opportunities ahead. ")
	}

	switch n := len(repos); {
	case n >= manyRepos:
		fmt.Fprintf(&b, "Your %d GitHub projects demonstrate practical experience. ", n)
	case n == 1:
		b.WriteString("Your 1 project shows initiative, but expanding your portfolio would strengthen your candidacy. ")
	case n > 1:
		fmt.Fprintf(&b, "Your %d projects show initiative, but expanding your portfolio would strengthen your candidacy. ", n)
	default:
		b.WriteString("Building practical projects and showcasing them on GitHub will significantly boost your profile. ")
	}

	switch n := len(lowerAll(skills)); {
	case n >= manySkills:
		b.WriteString("Your diverse skill set positions you well for the dynamic tech landscape.")
	case n >= enoughSkills:
		b.WriteString("Your current skills provide a good foundation for continued growth.")
	case n > 0:
		b.WriteString("Focus on expanding your technical toolkit to match industry expectations.")
	default:
		b.WriteString("Developing and showcasing relevant technical skills will be crucial for your career advancement.")
	}

	return b.String()
}
