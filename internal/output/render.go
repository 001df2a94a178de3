package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/caffinecoder/skillnav/internal/domain/model"
	"github.com/caffinecoder/skillnav/internal/domain/scoring"
)

// Options controls RenderResult.
type Options struct {
	// Animate counts the score up before printing the rest. Callers set it
	// only when the writer is a terminal.
	Animate bool
	// Breakdown, when set, is printed as a contribution table.
	Breakdown *scoring.Breakdown
	// Goal is echoed in the header when non-empty.
	Goal string
}

// RenderResult writes a human readable analysis to w.
func RenderResult(w io.Writer, res model.Result, opts Options) {
	fmt.Fprintln(w, StyleHeader.Render("Career readiness"))
	if opts.Goal != "" {
		fmt.Fprintf(w, "%s %s\n", StyleLabel.Render("Goal"), opts.Goal)
	}
	if opts.Animate {
		Counter(w, res.Score, 0)
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s %s\n", StyleLabel.Render("Readiness score"), ScoreBar(res.Score, 30))
	}
	fmt.Fprintf(w, "%s %s\n", StyleLabel.Render("Source"), StyleMuted.Render(string(res.Source)))

	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleHeader.Render("Summary"))
	fmt.Fprintln(w, res.Summary)

	if len(res.Suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleHeader.Render("Suggestions"))
		for i, s := range res.Suggestions {
			fmt.Fprintf(w, "%s %s\n", StyleBold.Render(strconv.Itoa(i+1)+"."), s)
		}
	}

	if opts.Breakdown != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleHeader.Render("Score breakdown"))
		fmt.Fprint(w, BreakdownTable(*opts.Breakdown).Render())
	}
}

// BreakdownTable lays out each scoring contribution.
func BreakdownTable(b scoring.Breakdown) *Table {
	t := NewTable("Component", "Points")
	for _, row := range []struct {
		name string
		v    float64
	}{
		{"base", b.Base},
		{"skills", b.Skills},
		{"repo quantity", b.RepoQuantity},
		{"repo engagement", b.RepoEngagement},
		{"repo diversity", b.RepoDiversity},
		{"goal specificity", b.GoalSpecificity},
		{"goal role", b.GoalRole},
		{"goal field", b.GoalField},
		{"alignment", b.Alignment},
		{"raw total", b.Raw},
	} {
		t.AddRow(row.name, strconv.FormatFloat(row.v, 'f', 2, 64))
	}
	t.AddRow("score", strconv.Itoa(b.Score))
	return t
}

// LatencyRow formats a duration in milliseconds for report tables.
func LatencyRow(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Microseconds())/1000, 'f', 1, 64) + " ms"
}
