package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
)

func TestCreateEvent_Success(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	version := env.seedVersion(t, 10, "hello world")

	publishAt := time.Now().Add(time.Hour).UTC()
	event, err := env.scheduler.CreateEvent(ctx, 10, version.ID, publishAt, "alice", "default")

	assert.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.Equal(t, domain.StatusScheduled, event.Status)
	assert.Equal(t, "alice", event.CreatedBy)

	stored, err := env.scheduler.GetEvent(ctx, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, stored.Status)
	assert.WithinDuration(t, publishAt, stored.PublishAt, time.Second)
}

func TestCreateEvent_PastPublishTime(t *testing.T) {
	env := newTestEnv(t, nil)
	version := env.seedVersion(t, 10, "payload")

	_, err := env.scheduler.CreateEvent(context.Background(), 10, version.ID, time.Now().Add(-time.Minute), "alice", "default")

	assert.ErrorIs(t, err, common.ErrPastPublishTime)
}

func TestCreateEvent_VersionMustBelongToContent(t *testing.T) {
	env := newTestEnv(t, nil)
	other := env.seedVersion(t, 99, "other content")

	_, err := env.scheduler.CreateEvent(context.Background(), 10, other.ID, time.Now().Add(time.Hour), "alice", "default")

	assert.ErrorIs(t, err, common.ErrVersionNotFound)
}

func TestCreateEvent_ConflictWithinSeparationWindow(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v1 := env.seedVersion(t, 10, "v1")
	v2 := env.seedVersion(t, 10, "v2")

	base := time.Now().Add(2 * time.Hour).UTC()
	_, err := env.scheduler.CreateEvent(ctx, 10, v1.ID, base, "alice", "default")
	assert.NoError(t, err)

	_, err = env.scheduler.CreateEvent(ctx, 10, v2.ID, base.Add(5*time.Minute), "alice", "default")

	sce := common.AsSchedulingConflict(err)
	if assert.NotNil(t, sce) {
		assert.True(t, sce.Report.HasConflicts())
		assert.Equal(t, domain.ConflictTimeOverlap, sce.Report.Conflicts[0].Kind)
	}

	// The conflicting insert was rolled back.
	events, err := env.scheduler.ListEvents(ctx, 10, "default")
	assert.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestCreateEvent_DuplicateTargetRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v1 := env.seedVersion(t, 10, "v1")

	base := time.Now().Add(2 * time.Hour).UTC()
	_, err := env.scheduler.CreateEvent(ctx, 10, v1.ID, base, "alice", "default")
	assert.NoError(t, err)

	_, err = env.scheduler.CreateEvent(ctx, 10, v1.ID, base.Add(time.Hour), "alice", "default")

	sce := common.AsSchedulingConflict(err)
	if assert.NotNil(t, sce) {
		assert.Equal(t, domain.ConflictDuplicateTarget, sce.Report.Conflicts[0].Kind)
	}
}

func TestCreateEvent_TenantsDoNotCollide(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v1 := env.seedVersion(t, 10, "v1")

	vOther, err := env.versions.CreateVersion(ctx, 10, "v1 other tenant", "author", "acme")
	assert.NoError(t, err)

	base := time.Now().Add(2 * time.Hour).UTC()
	_, err = env.scheduler.CreateEvent(ctx, 10, v1.ID, base, "alice", "default")
	assert.NoError(t, err)

	// Same content id and near-identical time in another tenant is fine.
	_, err = env.scheduler.CreateEvent(ctx, 10, vOther.ID, base.Add(time.Minute), "bob", "acme")
	assert.NoError(t, err)
}

func TestCreateEvent_PermissionDenied(t *testing.T) {
	perms := new(mockPermissionChecker)
	perms.On("HasPermission", "mallory", ActionScheduleCreate, uint64(10)).Return(false, nil)

	env := newTestEnv(t, perms)

	_, err := env.scheduler.CreateEvent(context.Background(), 10, 1, time.Now().Add(time.Hour), "mallory", "default")

	assert.ErrorIs(t, err, common.ErrPermissionDenied)
	perms.AssertExpectations(t)

	// Nothing was written.
	var count int64
	env.db.Model(&domain.ScheduledEvent{}).Count(&count)
	assert.Zero(t, count)
}

func TestUpdateStatus_ApproveRecordsApprover(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	version := env.seedVersion(t, 10, "v1")

	event, err := env.scheduler.CreateEvent(ctx, 10, version.ID, time.Now().Add(time.Hour), "alice", "default")
	assert.NoError(t, err)

	updated, err := env.scheduler.UpdateStatus(ctx, event.ID, domain.StatusApproved, "carol", "reviewed")

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)
	if assert.NotNil(t, updated.ApprovedBy) {
		assert.Equal(t, "carol", *updated.ApprovedBy)
	}
	assert.Contains(t, updated.Notes, "Status changed to approved: reviewed")
}

func TestUpdateStatus_InvalidTransitionLeavesStorageUnchanged(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	event := env.seedEvent(t, 10, 1, time.Now().Add(time.Hour), domain.StatusCompleted)

	_, err := env.scheduler.UpdateStatus(ctx, event.ID, domain.StatusScheduled, "carol", "reopen")

	var ite *common.InvalidTransitionError
	assert.True(t, errors.As(err, &ite))
	assert.Equal(t, "completed", ite.From)
	assert.Equal(t, "scheduled", ite.To)

	stored, err := env.scheduler.GetEvent(ctx, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
}

func TestCancel_ActiveEvent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	version := env.seedVersion(t, 10, "v1")

	event, err := env.scheduler.CreateEvent(ctx, 10, version.ID, time.Now().Add(time.Hour), "alice", "default")
	assert.NoError(t, err)

	assert.NoError(t, env.scheduler.Cancel(ctx, event.ID, "alice"))

	stored, err := env.scheduler.GetEvent(ctx, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestCancel_CompletedEventFails(t *testing.T) {
	env := newTestEnv(t, nil)
	event := env.seedEvent(t, 10, 1, time.Now().Add(-time.Hour), domain.StatusCompleted)

	err := env.scheduler.Cancel(context.Background(), event.ID, "alice")

	var ite *common.InvalidTransitionError
	assert.True(t, errors.As(err, &ite))
}

func TestGetEvent_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.scheduler.GetEvent(context.Background(), 12345)

	assert.ErrorIs(t, err, common.ErrEventNotFound)
}

func TestResolve_RescheduleShiftsAndRecordsStrategy(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v1 := env.seedVersion(t, 10, "v1")
	v2 := env.seedVersion(t, 10, "v2")

	base := time.Now().Add(2 * time.Hour).UTC()
	first, err := env.scheduler.CreateEvent(ctx, 10, v1.ID, base, "alice", "default")
	assert.NoError(t, err)

	resolved, err := env.scheduler.Resolve(ctx, 10, v2.ID, base.Add(5*time.Minute),
		domain.StrategyReschedule, "alice", "editor asked", "default")

	assert.NoError(t, err)
	if assert.NotNil(t, resolved.ResolutionStrategy) {
		assert.Equal(t, domain.StrategyReschedule, *resolved.ResolutionStrategy)
	}
	// Shifted past the existing event by the separation window.
	assert.WithinDuration(t, base.Add(30*time.Minute), resolved.PublishAt, time.Second)

	// The first event is untouched by reschedule.
	stored, err := env.scheduler.GetEvent(ctx, first.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, stored.Status)
}

func TestResolve_KeepLatestCancelsSuperseded(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v1 := env.seedVersion(t, 10, "v1")
	v2 := env.seedVersion(t, 10, "v2")

	base := time.Now().Add(2 * time.Hour).UTC()
	first, err := env.scheduler.CreateEvent(ctx, 10, v1.ID, base, "alice", "default")
	assert.NoError(t, err)

	resolved, err := env.scheduler.Resolve(ctx, 10, v2.ID, base.Add(5*time.Minute),
		domain.StrategyKeepLatest, "alice", "newer wins", "default")

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, resolved.Status)

	cancelled, err := env.scheduler.GetEvent(ctx, first.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Contains(t, cancelled.Notes, "superseded by keep_latest resolution")
}

func TestResolve_PlansAgainstTransactionalSnapshot(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v1 := env.seedVersion(t, 10, "v1")
	v2 := env.seedVersion(t, 10, "v2")

	base := time.Now().Add(2 * time.Hour).UTC()
	first, err := env.scheduler.CreateEvent(ctx, 10, v1.ID, base, "alice", "default")
	assert.NoError(t, err)

	// The planner must decide against the active set read inside the
	// resolve transaction, not a stale pre-read.
	var seen []uint64
	event := &domain.ScheduledEvent{
		ContentID: 10,
		VersionID: v2.ID,
		TenantID:  "default",
		PublishAt: base.Add(5 * time.Minute),
		Status:    domain.StatusScheduled,
		CreatedBy: "alice",
	}
	err = env.scheduleRepo.CreateResolved(ctx, event, func(pending []*domain.ScheduledEvent) ([]uint64, string, error) {
		for _, p := range pending {
			seen = append(seen, p.ID)
		}
		return []uint64{first.ID}, "Status changed to cancelled: superseded", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []uint64{first.ID}, seen)

	cancelled, err := env.scheduler.GetEvent(ctx, first.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
}

func TestResolve_PlannerErrorRollsBackEverything(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v1 := env.seedVersion(t, 10, "v1")

	event := &domain.ScheduledEvent{
		ContentID: 10,
		VersionID: v1.ID,
		TenantID:  "default",
		PublishAt: time.Now().Add(time.Hour).UTC(),
		Status:    domain.StatusScheduled,
		CreatedBy: "alice",
	}
	err := env.scheduleRepo.CreateResolved(ctx, event, func(pending []*domain.ScheduledEvent) ([]uint64, string, error) {
		return nil, "", common.ErrUnknownStrategy
	})
	assert.ErrorIs(t, err, common.ErrUnknownStrategy)

	var count int64
	env.db.Model(&domain.ScheduledEvent{}).Count(&count)
	assert.Zero(t, count)
}

func TestResolve_UnknownStrategyWritesNothing(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v1 := env.seedVersion(t, 10, "v1")

	_, err := env.scheduler.Resolve(ctx, 10, v1.ID, time.Now().Add(time.Hour),
		"coin_flip", "alice", "", "default")

	assert.ErrorIs(t, err, common.ErrUnknownStrategy)

	var count int64
	env.db.Model(&domain.ScheduledEvent{}).Count(&count)
	assert.Zero(t, count)
}
