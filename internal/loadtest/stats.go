package loadtest

import (
	"slices"
	"sync"
	"time"
)

// Latency summarizes one operation's samples.
type Latency struct {
	Count int
	Min   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Max   time.Duration
}

// summarize computes nearest-rank percentiles over samples.
func summarize(samples []time.Duration) Latency {
	if len(samples) == 0 {
		return Latency{}
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	return Latency{
		Count: len(sorted),
		Min:   sorted[0],
		Mean:  total / time.Duration(len(sorted)),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		P99:   percentile(sorted, 99),
		Max:   sorted[len(sorted)-1],
	}
}

// percentile returns the nearest-rank p-th percentile of sorted.
func percentile(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	return sorted[max(rank, 1)-1]
}

// recorder collects latency samples per operation.
type recorder struct {
	mu      sync.Mutex
	samples map[string][]time.Duration
}

func newRecorder() *recorder {
	return &recorder{samples: make(map[string][]time.Duration)}
}

func (r *recorder) add(op string, d time.Duration) {
	r.mu.Lock()
	r.samples[op] = append(r.samples[op], d)
	r.mu.Unlock()
}

func (r *recorder) summaries() map[string]Latency {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Latency, len(r.samples))
	for op, s := range r.samples {
		out[op] = summarize(s)
	}
	return out
}
