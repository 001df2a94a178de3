package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ScoreBar renders a bar for a 0-100 score, e.g. "████████░░ 80/100".
func ScoreBar(score, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := score * width / 100
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %s", scoreStyle(score).Render(bar), StyleMuted.Render(fmt.Sprintf("%d/100", score)))
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 70:
		return StyleSuccess
	case score >= 40:
		return StyleWarning
	default:
		return StyleError
	}
}

// Counter animates a score counting up from zero on w. Only call it when w
// is a terminal; the final frame is left on the line without a newline.
func Counter(w io.Writer, score int, step time.Duration) {
	if step <= 0 {
		step = 15 * time.Millisecond
	}
	for v := 0; v <= score; v++ {
		fmt.Fprintf(w, "\r%s %s", StyleLabel.Render("Readiness score"), ScoreBar(v, 30))
		if v < score {
			time.Sleep(step)
		}
	}
}
