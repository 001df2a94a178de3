package service

import "errors"

var (
	// ErrNotStarted is returned by job operations before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrBackpressure is returned when the job queue cannot take more work.
	ErrBackpressure = errors.New("analysis queue is full")
)
