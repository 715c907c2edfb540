package service

import (
	"context"

	"github.com/youpolonia/cms-sub038/internal/domain"
)

// PermissionChecker is the external permission gate consulted before any
// mutating scheduling call. A denial maps to common.ErrPermissionDenied.
type PermissionChecker interface {
	HasPermission(userID, action string, resourceID uint64) (bool, error)
}

// Notifier is the external notification sink invoked after successful
// status transitions. Failures are logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string) error
}

// AccessLogger records status-changing operations for audit. Best effort
// and non-blocking for the caller.
type AccessLogger interface {
	LogAccess(userID, entityType, action string, entityID uint64)
}

// StatusCache is a read-side cache for content status lookups. Writers
// invalidate; readers treat a miss as "ask storage".
type StatusCache interface {
	GetContentStatus(ctx context.Context, tenantID string, contentID uint64) (domain.ScheduleStatus, bool)
	SetContentStatus(ctx context.Context, tenantID string, contentID uint64, status domain.ScheduleStatus)
	InvalidateContent(ctx context.Context, tenantID string, contentID uint64)
}

// Scheduling actions checked against the permission gate.
const (
	ActionScheduleCreate = "schedule.create"
	ActionScheduleUpdate = "schedule.update"
	ActionScheduleCancel = "schedule.cancel"
	ActionBatchSchedule  = "schedule.batch"
)
