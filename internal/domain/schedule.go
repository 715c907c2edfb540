package domain

import "time"

// ScheduleStatus is the status of a scheduled publish event.
type ScheduleStatus string

// Scheduled event statuses. Completed is terminal.
const (
	StatusScheduled ScheduleStatus = "scheduled"
	StatusPending   ScheduleStatus = "pending"
	StatusApproved  ScheduleStatus = "approved"
	StatusRejected  ScheduleStatus = "rejected"
	StatusCancelled ScheduleStatus = "cancelled"
	StatusCompleted ScheduleStatus = "completed"
)

// ActiveStatuses are the non-terminal, non-cancelled statuses: events in
// these states still compete for a publish slot.
var ActiveStatuses = []ScheduleStatus{StatusScheduled, StatusPending, StatusApproved}

// PublishableStatuses are the statuses eligible for promotion by the
// due-event sweep.
var PublishableStatuses = []ScheduleStatus{StatusScheduled, StatusApproved}

// IsActive reports whether s is a non-terminal, non-cancelled status.
func (s ScheduleStatus) IsActive() bool {
	return s == StatusScheduled || s == StatusPending || s == StatusApproved
}

// IsPublishable reports whether an event in status s may be promoted
// when its publish time arrives.
func (s ScheduleStatus) IsPublishable() bool {
	return s == StatusScheduled || s == StatusApproved
}

// ScheduledEvent links a content version to a future publish time and
// tracks its approval/execution status.
// Table: scheduled_events
type ScheduledEvent struct {
	ID                 uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentID          uint64         `gorm:"column:content_id;index:idx_event_content" json:"content_id"`
	VersionID          uint64         `gorm:"column:version_id;index" json:"version_id"`
	TenantID           string         `gorm:"column:tenant_id;size:64;index:idx_event_content" json:"tenant_id"`
	PublishAt          time.Time      `gorm:"column:publish_at;index" json:"publish_at"`
	Status             ScheduleStatus `gorm:"column:status;size:20;index;default:scheduled" json:"status"`
	ResolutionStrategy *string        `gorm:"column:resolution_strategy;size:32" json:"resolution_strategy,omitempty"`
	Notes              string         `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedBy          string         `gorm:"column:created_by;size:64" json:"created_by"`
	ApprovedBy         *string        `gorm:"column:approved_by;size:64" json:"approved_by,omitempty"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for ScheduledEvent model
func (ScheduledEvent) TableName() string {
	return "scheduled_events"
}

// EventResponse is the API response format for a scheduled event
type EventResponse struct {
	ID                 uint64         `json:"id"`
	ContentID          uint64         `json:"content_id"`
	VersionID          uint64         `json:"version_id"`
	PublishAt          time.Time      `json:"publish_at"`
	Status             ScheduleStatus `json:"status"`
	ResolutionStrategy *string        `json:"resolution_strategy,omitempty"`
	Notes              string         `json:"notes,omitempty"`
	CreatedBy          string         `json:"created_by"`
	ApprovedBy         *string        `json:"approved_by,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

// ToResponse converts ScheduledEvent to EventResponse
func (e *ScheduledEvent) ToResponse() EventResponse {
	return EventResponse{
		ID:                 e.ID,
		ContentID:          e.ContentID,
		VersionID:          e.VersionID,
		PublishAt:          e.PublishAt,
		Status:             e.Status,
		ResolutionStrategy: e.ResolutionStrategy,
		Notes:              e.Notes,
		CreatedBy:          e.CreatedBy,
		ApprovedBy:         e.ApprovedBy,
		CreatedAt:          e.CreatedAt,
	}
}

// CreateEventRequest is the request body for scheduling a single event
type CreateEventRequest struct {
	ContentID uint64    `json:"content_id" binding:"required"`
	VersionID uint64    `json:"version_id" binding:"required"`
	PublishAt time.Time `json:"publish_at" binding:"required"`
}

// UpdateStatusRequest is the request body for a status transition
type UpdateStatusRequest struct {
	Status ScheduleStatus `json:"status" binding:"required"`
	Reason string         `json:"reason"`
}

// ResolveRequest is the request body for explicit conflict resolution
type ResolveRequest struct {
	ContentID uint64    `json:"content_id" binding:"required"`
	VersionID uint64    `json:"version_id" binding:"required"`
	PublishAt time.Time `json:"publish_at" binding:"required"`
	Strategy  string    `json:"strategy" binding:"required"`
	Notes     string    `json:"notes"`
}
