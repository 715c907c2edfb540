package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
	"github.com/youpolonia/cms-sub038/internal/repository"
)

// DefaultBatchMaxItems is the hard cap on items per batch call. The cap
// is backpressure: one request must not hold locks across an unbounded
// number of content items.
const DefaultBatchMaxItems = 50

// BatchService coordinates bounded groups of schedule requests. It is a
// thin orchestrator over the scheduler: it never writes scheduled_events
// rows itself.
type BatchService struct {
	batchRepo    repository.BatchRepository
	scheduleRepo repository.ScheduleRepository
	versionRepo  repository.VersionRepository
	scheduler    *SchedulerService
	resolver     *ConflictResolver
	perms        PermissionChecker
	cache        StatusCache
	maxItems     int
}

// NewBatchService creates a new BatchService. A maxItems of zero falls
// back to the default cap.
func NewBatchService(
	batchRepo repository.BatchRepository,
	scheduleRepo repository.ScheduleRepository,
	versionRepo repository.VersionRepository,
	scheduler *SchedulerService,
	resolver *ConflictResolver,
	perms PermissionChecker,
	cache StatusCache,
	maxItems int,
) *BatchService {
	if maxItems <= 0 {
		maxItems = DefaultBatchMaxItems
	}
	return &BatchService{
		batchRepo:    batchRepo,
		scheduleRepo: scheduleRepo,
		versionRepo:  versionRepo,
		scheduler:    scheduler,
		resolver:     resolver,
		perms:        perms,
		cache:        cache,
		maxItems:     maxItems,
	}
}

// MaxItems returns the configured batch cap
func (s *BatchService) MaxItems() int {
	return s.maxItems
}

// ScheduleBatch schedules every item independently through the
// scheduler. An oversized batch is rejected before any item is touched;
// a per-item failure is recorded on that item without aborting the rest.
func (s *BatchService) ScheduleBatch(ctx context.Context, items []domain.BatchItemRequest, userID, tenantID string) (*domain.BatchScheduleResponse, error) {
	if err := s.checkPermission(userID, ActionBatchSchedule); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, common.ErrInvalidInput
	}
	if len(items) > s.maxItems {
		return nil, common.ErrBatchTooLarge
	}

	batch := &domain.Batch{
		BatchID:   uuid.New().String(),
		TenantID:  tenantID,
		CreatedBy: userID,
		ItemCount: len(items),
	}
	rows := make([]*domain.BatchItem, len(items))
	for i, item := range items {
		rows[i] = &domain.BatchItem{
			Position:  i,
			ContentID: item.ContentID,
			VersionID: item.VersionID,
			PublishAt: item.PublishAt,
			Status:    domain.BatchItemPending,
		}
	}
	if err := s.batchRepo.CreateWithItems(ctx, batch, rows); err != nil {
		return nil, err
	}

	results := make([]domain.BatchItemResult, len(items))
	for i, row := range rows {
		result := domain.BatchItemResult{
			Position:  row.Position,
			ContentID: row.ContentID,
			VersionID: row.VersionID,
		}

		event, err := s.scheduler.CreateEvent(ctx, row.ContentID, row.VersionID, row.PublishAt, userID, tenantID)
		if err != nil {
			row.Status = domain.BatchItemFailed
			row.Error = err.Error()
			result.Error = err.Error()
		} else {
			row.Status = domain.BatchItemSucceeded
			row.EventID = &event.ID
			result.Success = true
			result.EventID = event.ID
		}

		if updateErr := s.batchRepo.UpdateItem(ctx, row); updateErr != nil {
			return nil, updateErr
		}
		results[i] = result
	}

	return &domain.BatchScheduleResponse{
		BatchID: batch.BatchID,
		Results: results,
	}, nil
}

// CheckConflicts is a read-only pre-flight: each item is checked against
// the current snapshot without writing anything, for UI warnings before
// committing a batch.
func (s *BatchService) CheckConflicts(ctx context.Context, items []domain.BatchItemRequest, tenantID string) ([]domain.BatchConflictResult, error) {
	if len(items) == 0 {
		return nil, common.ErrInvalidInput
	}
	if len(items) > s.maxItems {
		return nil, common.ErrBatchTooLarge
	}

	var conflicts []domain.BatchConflictResult
	for i, item := range items {
		current, err := s.versionRepo.FindCurrent(ctx, item.ContentID, tenantID)
		if err != nil {
			return nil, err
		}
		pending, err := s.scheduleRepo.FindActiveByContent(ctx, item.ContentID, tenantID)
		if err != nil {
			return nil, err
		}

		candidate := &domain.ScheduledEvent{
			ContentID: item.ContentID,
			VersionID: item.VersionID,
			TenantID:  tenantID,
			PublishAt: item.PublishAt,
			Status:    domain.StatusScheduled,
		}
		snapshot := append(append([]*domain.ScheduledEvent{}, pending...), candidate)
		report := candidateConflicts(s.resolver.CheckConflicts(current, snapshot))
		if report.HasConflicts() {
			conflicts = append(conflicts, domain.BatchConflictResult{
				Position:  i,
				ContentID: item.ContentID,
				Report:    report,
			})
		}
	}
	return conflicts, nil
}

// GetProgress returns live aggregate counts for a batch, read from the
// persisted item rows on every call.
func (s *BatchService) GetProgress(ctx context.Context, batchID string) (*domain.BatchProgress, error) {
	if batchID == "" {
		return nil, common.ErrInvalidInput
	}
	return s.batchRepo.Progress(ctx, batchID)
}

// GetStatus maps each content id to the status of its latest event,
// serving cached entries where they are still valid.
func (s *BatchService) GetStatus(ctx context.Context, contentIDs []uint64, tenantID string) (map[uint64]domain.ScheduleStatus, error) {
	if len(contentIDs) == 0 {
		return nil, common.ErrNoContentIDs
	}

	statuses := make(map[uint64]domain.ScheduleStatus, len(contentIDs))
	var misses []uint64
	for _, id := range contentIDs {
		if s.cache != nil {
			if status, ok := s.cache.GetContentStatus(ctx, tenantID, id); ok {
				statuses[id] = status
				continue
			}
		}
		misses = append(misses, id)
	}

	if len(misses) > 0 {
		fetched, err := s.scheduleRepo.LatestStatusByContent(ctx, misses, tenantID)
		if err != nil {
			return nil, err
		}
		for id, status := range fetched {
			statuses[id] = status
			if s.cache != nil {
				s.cache.SetContentStatus(ctx, tenantID, id, status)
			}
		}
	}

	return statuses, nil
}

// ListItems returns the persisted items of a batch in submitted order
func (s *BatchService) ListItems(ctx context.Context, batchID string) ([]*domain.BatchItem, error) {
	if batchID == "" {
		return nil, common.ErrInvalidInput
	}
	if _, err := s.batchRepo.FindByBatchID(ctx, batchID); err != nil {
		return nil, err
	}
	return s.batchRepo.ListItems(ctx, batchID)
}

func (s *BatchService) checkPermission(userID, action string) error {
	if s.perms == nil {
		return nil
	}
	allowed, err := s.perms.HasPermission(userID, action, 0)
	if err != nil {
		return err
	}
	if !allowed {
		return common.ErrPermissionDenied
	}
	return nil
}
