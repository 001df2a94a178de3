package model

import "time"

// Source identifies which analyzer produced a Result.
type Source string

// Result sources.
const (
	SourceEngine Source = "engine"
	SourceAI     Source = "ai"
)

// Result is the outcome of an analysis. JSON names follow the public
// /analyze contract.
type Result struct {
	Score       int      `json:"score"`
	Summary     string   `json:"summary"`
	Suggestions []string `json:"top_suggestions"`
	Source      Source   `json:"source"`
	User        string   `json:"user,omitempty"`
}

// JobStatus is the lifecycle state of an asynchronous analysis.
type JobStatus string

// Job states.
const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// AnalysisJob is an analysis submitted for asynchronous processing.
type AnalysisJob struct {
	ID          string     `json:"id"`
	RequestID   string     `json:"request_id,omitempty"`
	Owner       string     `json:"owner,omitempty"`
	Profile     Profile    `json:"-"`
	Status      JobStatus  `json:"status"`
	Result      *Result    `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Done reports whether the job reached a terminal state.
func (j AnalysisJob) Done() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}
