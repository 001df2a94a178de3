package repository

import "errors"

// Sentinel kinds for job store errors.
var (
	ErrNotFound        = errors.New("job not found")
	ErrAlreadyFinished = errors.New("job already finished")
	ErrInvalidJob      = errors.New("invalid job")
)
