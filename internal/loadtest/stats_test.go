package loadtest

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSummarize(t *testing.T) {
	Convey("Given latency samples", t, func() {
		var samples []time.Duration
		for i := 100; i >= 1; i-- {
			samples = append(samples, time.Duration(i)*time.Millisecond)
		}
		l := summarize(samples)

		Convey("Then nearest-rank percentiles are reported", func() {
			So(l.Count, ShouldEqual, 100)
			So(l.Min, ShouldEqual, time.Millisecond)
			So(l.Max, ShouldEqual, 100*time.Millisecond)
			So(l.P50, ShouldEqual, 50*time.Millisecond)
			So(l.P95, ShouldEqual, 95*time.Millisecond)
			So(l.P99, ShouldEqual, 99*time.Millisecond)
			So(l.Mean, ShouldEqual, 50500*time.Microsecond)
		})

		Convey("Then the input is not reordered", func() {
			So(samples[0], ShouldEqual, 100*time.Millisecond)
		})
	})

	Convey("Given a single sample", t, func() {
		l := summarize([]time.Duration{7 * time.Millisecond})
		So(l.P50, ShouldEqual, 7*time.Millisecond)
		So(l.P99, ShouldEqual, 7*time.Millisecond)
	})

	Convey("Given no samples", t, func() {
		So(summarize(nil), ShouldResemble, Latency{})
	})
}

func TestGenerateRequests(t *testing.T) {
	Convey("Given generated requests", t, func() {
		reqs := generateRequests(12)

		Convey("Then every request has a goal and a unique request id", func() {
			seen := map[string]bool{}
			for _, r := range reqs {
				So(r.CareerGoal, ShouldNotBeBlank)
				So(seen[r.RequestID], ShouldBeFalse)
				seen[r.RequestID] = true
			}
			So(len(reqs[6].GithubRepos), ShouldEqual, 6)
		})
	})
}
