package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
)

var testBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCheckConflicts_NoConflicts(t *testing.T) {
	r := NewConflictResolver(30 * time.Minute)

	pending := []*domain.ScheduledEvent{
		{ID: 1, ContentID: 10, VersionID: 1, PublishAt: testBase, Status: domain.StatusScheduled},
		{ID: 2, ContentID: 10, VersionID: 2, PublishAt: testBase.Add(time.Hour), Status: domain.StatusScheduled},
	}

	report := r.CheckConflicts(nil, pending)
	assert.False(t, report.HasConflicts())
}

func TestCheckConflicts_TimeOverlap(t *testing.T) {
	r := NewConflictResolver(30 * time.Minute)

	pending := []*domain.ScheduledEvent{
		{ID: 1, ContentID: 10, VersionID: 1, PublishAt: testBase, Status: domain.StatusScheduled},
		{ID: 2, ContentID: 10, VersionID: 2, PublishAt: testBase.Add(5 * time.Minute), Status: domain.StatusScheduled},
	}

	report := r.CheckConflicts(nil, pending)

	assert.Len(t, report.Conflicts, 1)
	c := report.Conflicts[0]
	assert.Equal(t, domain.ConflictTimeOverlap, c.Kind)
	assert.Equal(t, uint64(2), c.EventID)
	assert.Equal(t, uint64(1), c.OtherEventID)
}

func TestCheckConflicts_ExactSeparationIsNotAConflict(t *testing.T) {
	r := NewConflictResolver(30 * time.Minute)

	pending := []*domain.ScheduledEvent{
		{ID: 1, ContentID: 10, VersionID: 1, PublishAt: testBase, Status: domain.StatusScheduled},
		{ID: 2, ContentID: 10, VersionID: 2, PublishAt: testBase.Add(30 * time.Minute), Status: domain.StatusScheduled},
	}

	report := r.CheckConflicts(nil, pending)
	assert.False(t, report.HasConflicts())
}

func TestCheckConflicts_DuplicateTarget(t *testing.T) {
	r := NewConflictResolver(30 * time.Minute)

	pending := []*domain.ScheduledEvent{
		{ID: 1, ContentID: 10, VersionID: 5, PublishAt: testBase, Status: domain.StatusScheduled},
		{ID: 2, ContentID: 10, VersionID: 5, PublishAt: testBase.Add(2 * time.Hour), Status: domain.StatusApproved},
	}

	report := r.CheckConflicts(nil, pending)

	assert.Len(t, report.Conflicts, 1)
	assert.Equal(t, domain.ConflictDuplicateTarget, report.Conflicts[0].Kind)
}

func TestCheckConflicts_Supersession(t *testing.T) {
	r := NewConflictResolver(30 * time.Minute)

	current := &domain.ContentVersion{
		ID:            3,
		ContentID:     10,
		VersionNumber: 3,
		IsCurrent:     true,
		UpdatedAt:     testBase,
	}
	pending := []*domain.ScheduledEvent{
		{ID: 1, ContentID: 10, VersionID: 4, PublishAt: testBase.Add(10 * time.Minute), Status: domain.StatusScheduled},
	}

	report := r.CheckConflicts(current, pending)

	assert.Len(t, report.Conflicts, 1)
	c := report.Conflicts[0]
	assert.Equal(t, domain.ConflictSupersession, c.Kind)
	assert.Equal(t, uint64(1), c.EventID)
	assert.Equal(t, uint64(0), c.OtherEventID)
}

func TestCheckConflicts_Deterministic(t *testing.T) {
	r := NewConflictResolver(30 * time.Minute)

	a := &domain.ScheduledEvent{ID: 1, ContentID: 10, VersionID: 1, PublishAt: testBase, Status: domain.StatusScheduled}
	b := &domain.ScheduledEvent{ID: 2, ContentID: 10, VersionID: 2, PublishAt: testBase.Add(5 * time.Minute), Status: domain.StatusScheduled}
	c := &domain.ScheduledEvent{ID: 3, ContentID: 10, VersionID: 3, PublishAt: testBase.Add(10 * time.Minute), Status: domain.StatusScheduled}

	first := r.CheckConflicts(nil, []*domain.ScheduledEvent{a, b, c})
	second := r.CheckConflicts(nil, []*domain.ScheduledEvent{c, a, b})

	assert.Equal(t, first, second)
	assert.Len(t, first.Conflicts, 3)
}

func TestPlan_KeepLatestCancelsActiveEvents(t *testing.T) {
	r := NewConflictResolver(30 * time.Minute)

	pending := []*domain.ScheduledEvent{
		{ID: 1, Status: domain.StatusScheduled},
		{ID: 2, Status: domain.StatusCancelled},
		{ID: 3, Status: domain.StatusApproved},
	}

	plan, err := r.Plan(domain.StrategyKeepLatest, testBase, pending, "editor request")

	assert.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, plan.CancelIDs)
	assert.Equal(t, testBase, plan.PublishAt)
	assert.Contains(t, plan.Note, "keep_latest")
}

func TestPlan_RescheduleShiftsPublishTime(t *testing.T) {
	r := NewConflictResolver(30 * time.Minute)

	pending := []*domain.ScheduledEvent{
		{ID: 1, PublishAt: testBase, Status: domain.StatusScheduled},
	}

	plan, err := r.Plan(domain.StrategyReschedule, testBase.Add(5*time.Minute), pending, "")

	assert.NoError(t, err)
	assert.Empty(t, plan.CancelIDs)
	assert.Equal(t, testBase.Add(30*time.Minute), plan.PublishAt)
}

func TestPlan_ManualOverrideKeepsRequestedTime(t *testing.T) {
	r := NewConflictResolver(30 * time.Minute)

	pending := []*domain.ScheduledEvent{
		{ID: 1, PublishAt: testBase, Status: domain.StatusScheduled},
	}

	plan, err := r.Plan(domain.StrategyManualOverride, testBase.Add(5*time.Minute), pending, "ok")

	assert.NoError(t, err)
	assert.Empty(t, plan.CancelIDs)
	assert.Equal(t, testBase.Add(5*time.Minute), plan.PublishAt)
	assert.Contains(t, plan.Note, "manual override")
}

func TestPlan_UnknownStrategy(t *testing.T) {
	r := NewConflictResolver(30 * time.Minute)

	_, err := r.Plan("coin_flip", testBase, nil, "")

	assert.ErrorIs(t, err, common.ErrUnknownStrategy)
	assert.Contains(t, err.Error(), "coin_flip")
}

func TestNextFreeSlot_WalksPastChainedEvents(t *testing.T) {
	r := NewConflictResolver(30 * time.Minute)

	pending := []*domain.ScheduledEvent{
		{ID: 1, PublishAt: testBase, Status: domain.StatusScheduled},
		{ID: 2, PublishAt: testBase.Add(30 * time.Minute), Status: domain.StatusScheduled},
	}

	slot := r.NextFreeSlot(testBase.Add(10*time.Minute), pending)

	// 12:10 collides with 12:00, shifts to 12:30, collides with the 12:30
	// event, shifts to 13:00.
	assert.Equal(t, testBase.Add(time.Hour), slot)
}

func TestNextFreeSlot_IgnoresInactiveEvents(t *testing.T) {
	r := NewConflictResolver(30 * time.Minute)

	pending := []*domain.ScheduledEvent{
		{ID: 1, PublishAt: testBase, Status: domain.StatusCancelled},
	}

	slot := r.NextFreeSlot(testBase.Add(5*time.Minute), pending)
	assert.Equal(t, testBase.Add(5*time.Minute), slot)
}
