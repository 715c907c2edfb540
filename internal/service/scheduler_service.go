package service

import (
	"context"
	"fmt"
	"time"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
	"github.com/youpolonia/cms-sub038/internal/repository"
	"github.com/youpolonia/cms-sub038/pkg/logger"
)

// SchedulerService owns scheduled event creation and status writes.
// Transition legality is delegated to the state machine, conflict
// detection to the resolver; both are pure, so every decision happens
// inside the repository's guarded transaction.
type SchedulerService struct {
	scheduleRepo repository.ScheduleRepository
	versionRepo  repository.VersionRepository
	resolver     *ConflictResolver
	stateMachine *ScheduleStateMachine
	perms        PermissionChecker
	notifier     Notifier
	audit        AccessLogger
	cache        StatusCache
}

// NewSchedulerService creates a new SchedulerService. Notifier, audit
// logger, and cache may be nil; they are best-effort collaborators.
func NewSchedulerService(
	scheduleRepo repository.ScheduleRepository,
	versionRepo repository.VersionRepository,
	resolver *ConflictResolver,
	stateMachine *ScheduleStateMachine,
	perms PermissionChecker,
	notifier Notifier,
	audit AccessLogger,
	cache StatusCache,
) *SchedulerService {
	return &SchedulerService{
		scheduleRepo: scheduleRepo,
		versionRepo:  versionRepo,
		resolver:     resolver,
		stateMachine: stateMachine,
		perms:        perms,
		notifier:     notifier,
		audit:        audit,
		cache:        cache,
	}
}

// Resolver exposes the conflict resolver for read-only pre-flight checks
func (s *SchedulerService) Resolver() *ConflictResolver {
	return s.resolver
}

// CreateEvent schedules a version for future publication. Conflicts are
// never silently resolved: a conflicting request fails with a
// SchedulingConflictError carrying the full report.
func (s *SchedulerService) CreateEvent(ctx context.Context, contentID, versionID uint64, publishAt time.Time, userID, tenantID string) (*domain.ScheduledEvent, error) {
	if err := s.checkPermission(userID, ActionScheduleCreate, contentID); err != nil {
		return nil, err
	}
	if contentID == 0 || versionID == 0 {
		return nil, common.ErrInvalidInput
	}
	if !publishAt.After(time.Now()) {
		return nil, common.ErrPastPublishTime
	}
	if err := s.checkVersionTarget(ctx, contentID, versionID); err != nil {
		return nil, err
	}

	event := &domain.ScheduledEvent{
		ContentID: contentID,
		VersionID: versionID,
		TenantID:  tenantID,
		PublishAt: publishAt,
		Status:    domain.StatusScheduled,
		CreatedBy: userID,
	}

	err := s.scheduleRepo.CreateGuarded(ctx, event, func(current *domain.ContentVersion, pending []*domain.ScheduledEvent) error {
		snapshot := append(append([]*domain.ScheduledEvent{}, pending...), event)
		report := s.resolver.CheckConflicts(current, snapshot)
		if candidate := candidateConflicts(report); candidate.HasConflicts() {
			for _, c := range candidate.Conflicts {
				conflictsDetectedTotal.WithLabelValues(string(c.Kind)).Inc()
			}
			return common.NewSchedulingConflictError(candidate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventsCreatedTotal.Inc()
	s.logAccess(userID, "scheduled_event", "create", event.ID)
	s.invalidate(ctx, tenantID, contentID)
	return event, nil
}

// UpdateStatus applies a state-machine-validated transition and persists
// it. Notification and audit are fired after the write and never roll it
// back.
func (s *SchedulerService) UpdateStatus(ctx context.Context, eventID uint64, newStatus domain.ScheduleStatus, userID, reason string) (*domain.ScheduledEvent, error) {
	if err := s.checkPermission(userID, ActionScheduleUpdate, eventID); err != nil {
		return nil, err
	}

	event, err := s.scheduleRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	event, err = s.stateMachine.Transition(event, newStatus, reason)
	if err != nil {
		return nil, err
	}
	if newStatus == domain.StatusApproved {
		approver := userID
		event.ApprovedBy = &approver
	}

	if err := s.scheduleRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	s.notify(ctx, event.CreatedBy, "Schedule status changed",
		fmt.Sprintf("Event %d for content %d is now %s", event.ID, event.ContentID, event.Status))
	s.logAccess(userID, "scheduled_event", "status:"+string(newStatus), event.ID)
	s.invalidate(ctx, event.TenantID, event.ContentID)
	return event, nil
}

// Cancel is a convenience wrapper that cancels an active event
func (s *SchedulerService) Cancel(ctx context.Context, eventID uint64, userID string) error {
	if err := s.checkPermission(userID, ActionScheduleCancel, eventID); err != nil {
		return err
	}

	event, err := s.scheduleRepo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.Status.IsActive() {
		return common.NewInvalidTransitionError(string(event.Status), string(domain.StatusCancelled))
	}

	_, err = s.UpdateStatus(ctx, eventID, domain.StatusCancelled, userID, "cancelled by user")
	return err
}

// GetEvent loads one event by id
func (s *SchedulerService) GetEvent(ctx context.Context, eventID uint64) (*domain.ScheduledEvent, error) {
	return s.scheduleRepo.FindByID(ctx, eventID)
}

// ListEvents returns every event for a content item, newest first
func (s *SchedulerService) ListEvents(ctx context.Context, contentID uint64, tenantID string) ([]*domain.ScheduledEvent, error) {
	if contentID == 0 {
		return nil, common.ErrInvalidInput
	}
	return s.scheduleRepo.ListByContent(ctx, contentID, tenantID)
}

// Resolve applies an explicit resolution strategy: the resolver plans
// purely, then the plan executes in one transaction. The strategy is
// recorded on the resulting event for audit.
func (s *SchedulerService) Resolve(ctx context.Context, contentID, versionID uint64, publishAt time.Time, strategy, userID, notes, tenantID string) (*domain.ScheduledEvent, error) {
	if err := s.checkPermission(userID, ActionScheduleCreate, contentID); err != nil {
		return nil, err
	}
	if contentID == 0 || versionID == 0 {
		return nil, common.ErrInvalidInput
	}
	if !publishAt.After(time.Now()) {
		return nil, common.ErrPastPublishTime
	}
	if err := s.checkVersionTarget(ctx, contentID, versionID); err != nil {
		return nil, err
	}

	recordedStrategy := strategy
	event := &domain.ScheduledEvent{
		ContentID:          contentID,
		VersionID:          versionID,
		TenantID:           tenantID,
		PublishAt:          publishAt,
		Status:             domain.StatusScheduled,
		ResolutionStrategy: &recordedStrategy,
		CreatedBy:          userID,
	}

	// The planner runs inside the resolve transaction so the active set
	// it decides against cannot change before the insert commits.
	planner := func(pending []*domain.ScheduledEvent) ([]uint64, string, error) {
		plan, err := s.resolver.Plan(strategy, publishAt, pending, notes)
		if err != nil {
			return nil, "", err
		}
		event.PublishAt = plan.PublishAt
		event.Notes = plan.Note
		cancelNote := fmt.Sprintf("Status changed to cancelled: superseded by %s resolution", strategy)
		return plan.CancelIDs, cancelNote, nil
	}

	if err := s.scheduleRepo.CreateResolved(ctx, event, planner); err != nil {
		return nil, err
	}

	resolutionsTotal.WithLabelValues(strategy).Inc()
	s.logAccess(userID, "scheduled_event", "resolve:"+strategy, event.ID)
	s.invalidate(ctx, tenantID, contentID)
	return event, nil
}

// checkVersionTarget verifies the version exists and belongs to the content item
func (s *SchedulerService) checkVersionTarget(ctx context.Context, contentID, versionID uint64) error {
	version, err := s.versionRepo.FindByID(ctx, versionID)
	if err != nil {
		return err
	}
	if version.ContentID != contentID {
		return fmt.Errorf("%w: version %d does not belong to content %d", common.ErrVersionNotFound, versionID, contentID)
	}
	return nil
}

func (s *SchedulerService) checkPermission(userID, action string, resourceID uint64) error {
	if s.perms == nil {
		return nil
	}
	allowed, err := s.perms.HasPermission(userID, action, resourceID)
	if err != nil {
		return err
	}
	if !allowed {
		return common.ErrPermissionDenied
	}
	return nil
}

func (s *SchedulerService) notify(ctx context.Context, userID, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, title, message); err != nil {
		logger.GetLogger().Warn().Err(err).
			Str("user_id", userID).
			Msg("notification delivery failed")
	}
}

func (s *SchedulerService) logAccess(userID, entityType, action string, entityID uint64) {
	if s.audit == nil {
		return
	}
	s.audit.LogAccess(userID, entityType, action, entityID)
}

func (s *SchedulerService) invalidate(ctx context.Context, tenantID string, contentID uint64) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateContent(ctx, tenantID, contentID)
}

// candidateConflicts filters a report down to the pairs involving the
// not-yet-persisted candidate (event id zero). Pre-existing conflicts
// between stored events are surfaced by the pre-flight check instead.
func candidateConflicts(report domain.ConflictReport) domain.ConflictReport {
	var filtered domain.ConflictReport
	for _, c := range report.Conflicts {
		involved := c.EventID == 0
		if c.Kind != domain.ConflictSupersession && c.OtherEventID == 0 {
			involved = true
		}
		if involved {
			filtered.Conflicts = append(filtered.Conflicts, c)
		}
	}
	return filtered
}
