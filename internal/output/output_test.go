package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/caffinecoder/skillnav/internal/domain/model"
	"github.com/caffinecoder/skillnav/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreBar(t *testing.T) {
	SetNoColor(true)

	Convey("Given scores across the range", t, func() {
		Convey("Then the bar is proportionally filled", func() {
			So(ScoreBar(80, 10), ShouldEqual, "████████░░ 80/100")
			So(ScoreBar(0, 4), ShouldEqual, "░░░░ 0/100")
		})

		Convey("Then out of range values are clamped", func() {
			So(ScoreBar(150, 4), ShouldEqual, "████ 150/100")
			So(ScoreBar(-5, 4), ShouldEqual, "░░░░ -5/100")
		})

		Convey("Then a non-positive width uses the default", func() {
			So(strings.Count(ScoreBar(50, 0), "█"), ShouldEqual, 10)
		})
	})
}

func TestRenderResult(t *testing.T) {
	SetNoColor(true)

	Convey("Given an analysis result", t, func() {
		res := model.Result{
			Score:       72,
			Summary:     "Based on your goal of becoming a Data Analyst, ...",
			Suggestions: []string{"Master SQL", "Learn Tableau"},
			Source:      model.SourceEngine,
		}
		var buf bytes.Buffer

		Convey("When rendered without a breakdown", func() {
			RenderResult(&buf, res, Options{Goal: "Data Analyst"})
			out := buf.String()

			Convey("Then the score, summary and numbered suggestions appear", func() {
				So(out, ShouldContainSubstring, "72/100")
				So(out, ShouldContainSubstring, "Data Analyst")
				So(out, ShouldContainSubstring, "1. Master SQL")
				So(out, ShouldContainSubstring, "2. Learn Tableau")
				So(out, ShouldNotContainSubstring, "Score breakdown")
			})
		})

		Convey("When rendered with a breakdown", func() {
			b, err := scoring.NewEngine().Explain(model.Profile{CareerGoal: "Data Analyst", Skills: []string{"SQL"}})
			So(err, ShouldBeNil)
			RenderResult(&buf, res, Options{Breakdown: &b})

			Convey("Then every contribution is listed", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "Score breakdown")
				So(out, ShouldContainSubstring, "alignment")
				So(out, ShouldContainSubstring, "raw total")
			})
		})
	})
}

func TestTable(t *testing.T) {
	SetNoColor(true)

	Convey("Given a table with uneven rows", t, func() {
		tbl := NewTable("A", "Longer")
		tbl.AddRow("wide value", "1")
		tbl.AddRow("x")
		lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")

		Convey("Then columns are aligned to the widest cell", func() {
			So(lines, ShouldHaveLength, 4)
			So(lines[0], ShouldStartWith, "A           Longer")
			So(lines[2], ShouldEqual, "wide value  1")
			So(lines[3], ShouldEqual, "x           ")
		})
	})
}

func TestIsTerminal(t *testing.T) {
	Convey("Given a non-file writer", t, func() {
		So(IsTerminal(&bytes.Buffer{}), ShouldBeFalse)
	})
}
