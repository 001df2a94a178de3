// Package repository stores asynchronous analysis jobs.
package repository

import (
	"context"
	"time"

	"github.com/caffinecoder/skillnav/internal/domain/model"
)

// Store provides read/write access to analysis jobs.
type Store interface {
	// Create inserts a pending job. If a job with the same ID exists it is
	// returned unchanged with created == false.
	Create(ctx context.Context, job model.AnalysisJob) (stored model.AnalysisJob, created bool, err error)

	// Complete marks a pending job completed with res.
	Complete(ctx context.Context, id string, res model.Result) error

	// Fail marks a pending job failed with reason.
	Fail(ctx context.Context, id string, reason string) error

	// Get returns a copy of the job. Returns ErrNotFound if unknown.
	Get(ctx context.Context, id string) (model.AnalysisJob, error)

	// Delete removes a job regardless of its state. Unknown IDs are ignored.
	Delete(ctx context.Context, id string)

	// Count returns the number of jobs held.
	Count(ctx context.Context) int

	// Prune removes finished jobs completed before cutoff and returns how
	// many were removed.
	Prune(ctx context.Context, cutoff time.Time) int
}
