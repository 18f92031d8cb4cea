package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────

var (
	// Storage errors
	ErrStorageCapacity        = errors.New("storage tier capacity exceeded")
	ErrMigrationInconsistency = errors.New("migrated timeline does not match source, migration aborted")

	// Task errors
	ErrTaskNotFound = errors.New("task not found")

	// Timeline errors
	ErrTimelineEmpty = errors.New("timeline has no entries")

	// Timer errors
	ErrTimerNotRunning    = errors.New("no timer is running")
	ErrInvalidSessionType = errors.New("invalid session type")
)
