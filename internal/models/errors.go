package models

import "errors"

// Domain errors shared by services and translated to HTTP status codes in
// handlers. Store-internal error text never reaches callers; these carry the
// full user-visible message.
var (
	// ErrTaskNotFound signals that no task row exists for the given id
	ErrTaskNotFound = errors.New("task not found")

	// ErrLogsNotFound signals that the log query matched no rows for the
	// caller; indistinguishable from a task that has produced no logs yet
	ErrLogsNotFound = errors.New("no logs found")

	// ErrPermissionDenied signals an owner mismatch on a task operation
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")

	// ErrInvalidFrequency signals a frequency outside Daily/Weekly with no
	// explicit window to fall back on
	ErrInvalidFrequency = errors.New("frequency must be either 'Daily' or 'Weekly' or specify start and end times")

	// ErrInvalidTimeFormat signals an unparseable explicit start or end time
	ErrInvalidTimeFormat = errors.New("invalid date format for start time or end time")

	// ErrNameRequired signals a missing task name
	ErrNameRequired = errors.New("task name is required")

	// ErrTermRequired signals a missing search term
	ErrTermRequired = errors.New("term is required")

	// ErrTermNotFound signals that no search term row exists for the given id
	ErrTermNotFound = errors.New("search term not found")
)
