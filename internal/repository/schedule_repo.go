package repository

import (
	"context"
	"errors"
	"time"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
	"gorm.io/gorm"
)

// ScheduleGuard is a pure decision called inside the create transaction
// with a locked snapshot of the content item's current version and its
// active pending events. A non-nil return aborts the insert.
type ScheduleGuard func(current *domain.ContentVersion, pending []*domain.ScheduledEvent) error

// ResolvePlanner runs inside the resolve transaction with a locked
// snapshot of the content item's active events. It may adjust the new
// event (publish time, notes) and returns the superseded event IDs to
// cancel plus the note appended to each. A non-nil error aborts the
// whole resolution.
type ResolvePlanner func(pending []*domain.ScheduledEvent) (cancelIDs []uint64, cancelNote string, err error)

// PromoteFunc runs inside a per-event promotion transaction. It receives
// the claimed event and must apply the publish side effect and the status
// transition on it; the repository saves the event afterwards.
type PromoteFunc func(tx *gorm.DB, event *domain.ScheduledEvent) error

// ScheduleRepository defines the interface for scheduled event data access
type ScheduleRepository interface {
	// CreateGuarded locks the content item's active events, runs the guard
	// against the snapshot, and inserts the event only if the guard passes.
	// Check and insert share one transaction to close the check-then-act race.
	CreateGuarded(ctx context.Context, event *domain.ScheduledEvent, guard ScheduleGuard) error
	// CreateResolved plans against a locked snapshot of the content's
	// active events, cancels the superseded ones, and inserts the new
	// event, all in one transaction.
	CreateResolved(ctx context.Context, event *domain.ScheduledEvent, plan ResolvePlanner) error
	FindByID(ctx context.Context, id uint64) (*domain.ScheduledEvent, error)
	Update(ctx context.Context, event *domain.ScheduledEvent) error
	FindActiveByContent(ctx context.Context, contentID uint64, tenantID string) ([]*domain.ScheduledEvent, error)
	ListByContent(ctx context.Context, contentID uint64, tenantID string) ([]*domain.ScheduledEvent, error)
	// FindDueIDs returns ids of publishable events whose publish time has
	// arrived, in ascending publish_at order.
	FindDueIDs(ctx context.Context, tenantID string, now time.Time) ([]uint64, error)
	// PromoteDue claims one due event under a row lock, re-checks that it is
	// still publishable and due, and runs promote inside the same
	// transaction. Returns false when the event was already taken.
	PromoteDue(ctx context.Context, eventID uint64, now time.Time, promote PromoteFunc) (bool, error)
	// LatestStatusByContent maps each content id to the status of its most
	// recently created event.
	LatestStatusByContent(ctx context.Context, contentIDs []uint64, tenantID string) (map[uint64]domain.ScheduleStatus, error)
}

// scheduleRepository implements ScheduleRepository with GORM
type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func activeStatusValues() []string {
	values := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		values[i] = string(s)
	}
	return values
}

// CreateGuarded inserts an event after the guard approves the locked snapshot
func (r *scheduleRepository) CreateGuarded(ctx context.Context, event *domain.ScheduledEvent, guard ScheduleGuard) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending []*domain.ScheduledEvent
		err := forUpdate(tx).
			Where("content_id = ? AND tenant_id = ? AND status IN ?",
				event.ContentID, event.TenantID, activeStatusValues()).
			Order("publish_at ASC").
			Find(&pending).Error
		if err != nil {
			return err
		}

		var current *domain.ContentVersion
		var cv domain.ContentVersion
		err = tx.Where("content_id = ? AND tenant_id = ? AND is_current = ?",
			event.ContentID, event.TenantID, true).
			First(&cv).Error
		if err == nil {
			current = &cv
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := guard(current, pending); err != nil {
			return err
		}

		return tx.Create(event).Error
	})
}

// CreateResolved plans over a locked active-event snapshot, cancels the
// superseded events, and inserts the resolved one. Planning inside the
// transaction closes the same read-then-insert race CreateGuarded closes
// for plain creates.
func (r *scheduleRepository) CreateResolved(ctx context.Context, event *domain.ScheduledEvent, plan ResolvePlanner) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending []*domain.ScheduledEvent
		err := forUpdate(tx).
			Where("content_id = ? AND tenant_id = ? AND status IN ?",
				event.ContentID, event.TenantID, activeStatusValues()).
			Order("publish_at ASC").
			Find(&pending).Error
		if err != nil {
			return err
		}

		cancelIDs, cancelNote, err := plan(pending)
		if err != nil {
			return err
		}

		if len(cancelIDs) > 0 {
			var superseded []*domain.ScheduledEvent
			err := forUpdate(tx).
				Where("id IN ? AND status IN ?", cancelIDs, activeStatusValues()).
				Find(&superseded).Error
			if err != nil {
				return err
			}
			for _, old := range superseded {
				old.Status = domain.StatusCancelled
				if old.Notes != "" {
					old.Notes += "\n"
				}
				old.Notes += cancelNote
				if err := tx.Save(old).Error; err != nil {
					return err
				}
			}
		}
		return tx.Create(event).Error
	})
}

// FindByID finds an event by ID
func (r *scheduleRepository) FindByID(ctx context.Context, id uint64) (*domain.ScheduledEvent, error) {
	var event domain.ScheduledEvent
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Update persists an event
func (r *scheduleRepository) Update(ctx context.Context, event *domain.ScheduledEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// FindActiveByContent returns active events for a content item, earliest first
func (r *scheduleRepository) FindActiveByContent(ctx context.Context, contentID uint64, tenantID string) ([]*domain.ScheduledEvent, error) {
	var events []*domain.ScheduledEvent
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND tenant_id = ? AND status IN ?", contentID, tenantID, activeStatusValues()).
		Order("publish_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListByContent returns all events for a content item, newest first
func (r *scheduleRepository) ListByContent(ctx context.Context, contentID uint64, tenantID string) ([]*domain.ScheduledEvent, error) {
	var events []*domain.ScheduledEvent
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND tenant_id = ?", contentID, tenantID).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// FindDueIDs selects due publishable events in ascending publish order,
// so the earlier of two competing events always wins deterministically.
func (r *scheduleRepository) FindDueIDs(ctx context.Context, tenantID string, now time.Time) ([]uint64, error) {
	var ids []uint64
	query := r.db.WithContext(ctx).Model(&domain.ScheduledEvent{}).
		Where("status IN ? AND publish_at <= ?",
			[]string{string(domain.StatusScheduled), string(domain.StatusApproved)}, now)
	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}
	err := query.Order("publish_at ASC").Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// PromoteDue claims a due event and runs the promotion in one transaction
func (r *scheduleRepository) PromoteDue(ctx context.Context, eventID uint64, now time.Time, promote PromoteFunc) (bool, error) {
	claimed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event domain.ScheduledEvent
		err := forUpdate(tx).
			Where("id = ? AND status IN ? AND publish_at <= ?",
				eventID,
				[]string{string(domain.StatusScheduled), string(domain.StatusApproved)},
				now).
			First(&event).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Already promoted, cancelled, or not yet due: nothing to do.
			return nil
		}
		if err != nil {
			return err
		}

		if err := promote(tx, &event); err != nil {
			return err
		}
		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		claimed = true
		return nil
	})
	return claimed, err
}

// LatestStatusByContent maps content ids to their latest event status
func (r *scheduleRepository) LatestStatusByContent(ctx context.Context, contentIDs []uint64, tenantID string) (map[uint64]domain.ScheduleStatus, error) {
	statuses := make(map[uint64]domain.ScheduleStatus, len(contentIDs))
	if len(contentIDs) == 0 {
		return statuses, nil
	}

	var events []*domain.ScheduledEvent
	err := r.db.WithContext(ctx).
		Where("content_id IN ? AND tenant_id = ?", contentIDs, tenantID).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	// Ascending id scan: the last write per content id wins.
	for _, e := range events {
		statuses[e.ContentID] = e.Status
	}
	return statuses, nil
}
