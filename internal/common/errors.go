package common

import (
	"errors"
	"fmt"

	"github.com/youpolonia/cms-sub038/internal/domain"
)

// Business logic errors
var (
	// Version errors
	ErrVersionNotFound  = errors.New("version not found")
	ErrContentNotFound  = errors.New("content not found")
	ErrDuplicateVersion = errors.New("identical payload already published as current version")
	ErrAlreadyCurrent   = errors.New("version is already current")

	// Scheduling errors
	ErrEventNotFound   = errors.New("scheduled event not found")
	ErrPastPublishTime = errors.New("publish time must be in the future")
	ErrUnknownStrategy = errors.New("unknown resolution strategy")

	// Batch errors
	ErrBatchNotFound = errors.New("batch not found")
	ErrBatchTooLarge = errors.New("batch exceeds maximum item count")
	ErrNoContentIDs  = errors.New("content id list must not be empty")

	// Auth errors
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("expired token")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidTransitionError is returned when a status change is not allowed
// by the schedule state machine. The message always names both states.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// NewInvalidTransitionError creates an InvalidTransitionError
func NewInvalidTransitionError(from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

// IsInvalidTransition reports whether err is an InvalidTransitionError
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}

// SchedulingConflictError is returned when a schedule request collides
// with the current version or another pending event. It carries the full
// report; callers must explicitly pick a resolution strategy.
type SchedulingConflictError struct {
	Report domain.ConflictReport
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf("scheduling conflict: %d conflicting pair(s)", len(e.Report.Conflicts))
}

// NewSchedulingConflictError creates a SchedulingConflictError
func NewSchedulingConflictError(report domain.ConflictReport) *SchedulingConflictError {
	return &SchedulingConflictError{Report: report}
}

// AsSchedulingConflict extracts a SchedulingConflictError from err,
// or nil when err carries none.
func AsSchedulingConflict(err error) *SchedulingConflictError {
	var sce *SchedulingConflictError
	if errors.As(err, &sce) {
		return sce
	}
	return nil
}
