package scheduler

import "errors"

var (
	// ErrDuplicateJob is returned by AddJob when the job id is already
	// registered; callers are expected to remove (or upsert) first
	ErrDuplicateJob = errors.New("job already exists")

	// ErrJobNotFound is returned by RemoveJob when no job has the given id
	ErrJobNotFound = errors.New("job not found")

	// ErrEngineStopped is returned when registering on a stopped engine
	ErrEngineStopped = errors.New("engine is stopped")
)
