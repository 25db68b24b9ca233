package evalrun

import "errors"

var (
	// ErrEmptyTestSet is returned when the test set CSV has no rows.
	ErrEmptyTestSet = errors.New("test set is empty")

	// ErrMissingColumn is returned when the test set CSV lacks a
	// required column.
	ErrMissingColumn = errors.New("test set missing required column")

	// ErrRunNotFound is returned when restoring a run ID with no
	// checkpoint directory.
	ErrRunNotFound = errors.New("no evaluation run found with that ID")

	// ErrAnswererRequired is returned when a runner is built without an
	// answerer.
	ErrAnswererRequired = errors.New("answerer is required")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
