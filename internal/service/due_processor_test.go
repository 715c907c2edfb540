package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/youpolonia/cms-sub038/internal/domain"
)

func TestProcessDueEvents_PromotesApprovedEvent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	version := env.seedVersion(t, 10, "v1")

	now := time.Now().UTC()
	event := env.seedEvent(t, 10, version.ID, now.Add(-time.Minute), domain.StatusApproved)

	processed, err := env.due.ProcessDueEvents(ctx, now)

	assert.NoError(t, err)
	assert.Equal(t, 1, processed)

	stored, err := env.scheduler.GetEvent(ctx, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)

	current, err := env.versionRepo.FindCurrent(ctx, 10, "default")
	assert.NoError(t, err)
	if assert.NotNil(t, current) {
		assert.Equal(t, version.ID, current.ID)
		assert.True(t, current.IsCurrent)
		assert.Equal(t, domain.VersionStatusPublished, current.Status)
	}
}

func TestProcessDueEvents_AutoApprovesScheduledEvent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	version := env.seedVersion(t, 10, "v1")

	now := time.Now().UTC()
	event := env.seedEvent(t, 10, version.ID, now.Add(-time.Minute), domain.StatusScheduled)

	processed, err := env.due.ProcessDueEvents(ctx, now)

	assert.NoError(t, err)
	assert.Equal(t, 1, processed)

	stored, err := env.scheduler.GetEvent(ctx, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Contains(t, stored.Notes, "auto-approved by due sweep")
	assert.Contains(t, stored.Notes, "published by due sweep")
}

func TestProcessDueEvents_Idempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	version := env.seedVersion(t, 10, "v1")

	now := time.Now().UTC()
	env.seedEvent(t, 10, version.ID, now.Add(-time.Minute), domain.StatusApproved)

	processed, err := env.due.ProcessDueEvents(ctx, now)
	assert.NoError(t, err)
	assert.Equal(t, 1, processed)

	processed, err = env.due.ProcessDueEvents(ctx, now)
	assert.NoError(t, err)
	assert.Zero(t, processed)
}

func TestProcessDueEvents_SkipsFutureEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	version := env.seedVersion(t, 10, "v1")

	now := time.Now().UTC()
	event := env.seedEvent(t, 10, version.ID, now.Add(time.Hour), domain.StatusApproved)

	processed, err := env.due.ProcessDueEvents(ctx, now)

	assert.NoError(t, err)
	assert.Zero(t, processed)

	stored, err := env.scheduler.GetEvent(ctx, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status)
}

func TestProcessDueEvents_AscendingOrderLaterVersionEndsCurrent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	v1 := env.seedVersion(t, 10, "v1")
	v2 := env.seedVersion(t, 10, "v2")

	now := time.Now().UTC()
	env.seedEvent(t, 10, v1.ID, now.Add(-2*time.Hour), domain.StatusApproved)
	env.seedEvent(t, 10, v2.ID, now.Add(-time.Hour), domain.StatusApproved)

	processed, err := env.due.ProcessDueEvents(ctx, now)

	assert.NoError(t, err)
	assert.Equal(t, 2, processed)

	// Both promoted in publish order, so the later publish wins.
	current, err := env.versionRepo.FindCurrent(ctx, 10, "default")
	assert.NoError(t, err)
	if assert.NotNil(t, current) {
		assert.Equal(t, v2.ID, current.ID)
	}

	archived, err := env.versionRepo.FindByID(ctx, v1.ID)
	assert.NoError(t, err)
	assert.False(t, archived.IsCurrent)
	assert.Equal(t, domain.VersionStatusArchived, archived.Status)
}

func TestProcessDueEvents_FailedPromotionLeavesEventForRetry(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	good := env.seedVersion(t, 10, "good")

	now := time.Now().UTC()
	// References a version that does not exist, so promotion fails.
	broken := env.seedEvent(t, 20, 9999, now.Add(-2*time.Hour), domain.StatusApproved)
	env.seedEvent(t, 10, good.ID, now.Add(-time.Hour), domain.StatusApproved)

	processed, err := env.due.ProcessDueEvents(ctx, now)

	// The healthy event still publishes; the sweep reports no error.
	assert.NoError(t, err)
	assert.Equal(t, 1, processed)

	stored, err := env.scheduler.GetEvent(ctx, broken.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status)
}

func TestProcessDueEvents_CancelledEventNeverPublishes(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	version := env.seedVersion(t, 10, "v1")

	now := time.Now().UTC()
	env.seedEvent(t, 10, version.ID, now.Add(-time.Minute), domain.StatusCancelled)

	processed, err := env.due.ProcessDueEvents(ctx, now)

	assert.NoError(t, err)
	assert.Zero(t, processed)

	current, err := env.versionRepo.FindCurrent(ctx, 10, "default")
	assert.NoError(t, err)
	assert.Nil(t, current)
}
