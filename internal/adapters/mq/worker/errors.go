package worker

import "errors"

// Sentinel errors returned by Pool.
var (
	ErrQueueFull  = errors.New("job queue full")
	ErrStopped    = errors.New("worker pool stopped")
	ErrNotStarted = errors.New("worker pool not started")
)
