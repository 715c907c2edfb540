package service

import (
	"context"
	"time"

	"github.com/youpolonia/cms-sub038/internal/domain"
	"github.com/youpolonia/cms-sub038/internal/repository"
	"github.com/youpolonia/cms-sub038/pkg/logger"
	"gorm.io/gorm"
)

// DueEventService promotes due scheduled events: the referenced version
// becomes current and the event completes, atomically per event. The
// sweep never reads the wall clock; the caller supplies now.
type DueEventService struct {
	scheduleRepo repository.ScheduleRepository
	versionRepo  repository.VersionRepository
	stateMachine *ScheduleStateMachine
	audit        AccessLogger
	cache        StatusCache
}

// NewDueEventService creates a new DueEventService
func NewDueEventService(
	scheduleRepo repository.ScheduleRepository,
	versionRepo repository.VersionRepository,
	stateMachine *ScheduleStateMachine,
	audit AccessLogger,
	cache StatusCache,
) *DueEventService {
	return &DueEventService{
		scheduleRepo: scheduleRepo,
		versionRepo:  versionRepo,
		stateMachine: stateMachine,
		audit:        audit,
		cache:        cache,
	}
}

// ProcessDueEvents runs one sweep over all tenants. Events are processed
// in ascending publish_at order; each promotion is one transaction with
// a row-lock claim, so overlapping sweeps promote each event at most
// once. A failed promotion leaves the event untouched for the next
// sweep. Returns the number of events completed in this invocation.
func (s *DueEventService) ProcessDueEvents(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.scheduleRepo.FindDueIDs(ctx, "", now)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, id := range ids {
		claimed, err := s.promoteOne(ctx, id, now)
		if err != nil {
			sweepFailuresTotal.Inc()
			logger.GetLogger().Error().Err(err).
				Uint64("event_id", id).
				Time("sweep_now", now).
				Msg("due event promotion failed, will retry next sweep")
			continue
		}
		if claimed {
			processed++
			sweepProcessedTotal.Inc()
		}
	}
	return processed, nil
}

// promoteOne claims one event and applies the publish side effect plus
// the completion transition inside the claim transaction.
func (s *DueEventService) promoteOne(ctx context.Context, eventID uint64, now time.Time) (bool, error) {
	var promoted *domain.ScheduledEvent

	claimed, err := s.scheduleRepo.PromoteDue(ctx, eventID, now, func(tx *gorm.DB, event *domain.ScheduledEvent) error {
		// scheduled events complete through approved; both hops are
		// validated against the transition table.
		if event.Status == domain.StatusScheduled {
			if _, err := s.stateMachine.Transition(event, domain.StatusApproved, "auto-approved by due sweep"); err != nil {
				return err
			}
		}
		if err := s.versionRepo.MarkCurrentTx(tx, event.VersionID); err != nil {
			return err
		}
		if _, err := s.stateMachine.Transition(event, domain.StatusCompleted, "published by due sweep"); err != nil {
			return err
		}
		promoted = event
		return nil
	})
	if err != nil || !claimed {
		return false, err
	}

	s.logAccess("system", "scheduled_event", "complete", promoted.ID)
	s.invalidate(ctx, promoted.TenantID, promoted.ContentID)
	return true, nil
}

func (s *DueEventService) logAccess(userID, entityType, action string, entityID uint64) {
	if s.audit == nil {
		return
	}
	s.audit.LogAccess(userID, entityType, action, entityID)
}

func (s *DueEventService) invalidate(ctx context.Context, tenantID string, contentID uint64) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateContent(ctx, tenantID, contentID)
}
