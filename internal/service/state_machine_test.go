package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
)

func TestCanTransition_FullTable(t *testing.T) {
	m := NewScheduleStateMachine()

	allowed := map[domain.ScheduleStatus][]domain.ScheduleStatus{
		domain.StatusScheduled: {domain.StatusApproved, domain.StatusRejected, domain.StatusCancelled},
		domain.StatusPending:   {domain.StatusApproved, domain.StatusRejected, domain.StatusCancelled},
		domain.StatusApproved:  {domain.StatusCompleted, domain.StatusCancelled},
		domain.StatusRejected:  {domain.StatusScheduled, domain.StatusPending},
		domain.StatusCancelled: {domain.StatusScheduled, domain.StatusPending},
		domain.StatusCompleted: {},
	}
	all := []domain.ScheduleStatus{
		domain.StatusScheduled, domain.StatusPending, domain.StatusApproved,
		domain.StatusRejected, domain.StatusCancelled, domain.StatusCompleted,
	}

	for from, targets := range allowed {
		legal := make(map[domain.ScheduleStatus]bool, len(targets))
		for _, to := range targets {
			legal[to] = true
		}
		for _, to := range all {
			got := m.CanTransition(from, to)
			assert.Equal(t, legal[to], got, "transition %s -> %s", from, to)
		}
	}
}

func TestTransition_CompletedIsTerminal(t *testing.T) {
	m := NewScheduleStateMachine()
	event := &domain.ScheduledEvent{ID: 7, Status: domain.StatusCompleted}

	_, err := m.Transition(event, domain.StatusScheduled, "reopen")

	assert.Error(t, err)
	var ite *common.InvalidTransitionError
	assert.True(t, errors.As(err, &ite))
	assert.Equal(t, "invalid transition from completed to scheduled", err.Error())
	// The event is not mutated on rejection.
	assert.Equal(t, domain.StatusCompleted, event.Status)
}

func TestTransition_AppendsReasonNote(t *testing.T) {
	m := NewScheduleStateMachine()
	event := &domain.ScheduledEvent{Status: domain.StatusScheduled, Notes: "first"}

	got, err := m.Transition(event, domain.StatusApproved, "looks good")

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	assert.Equal(t, "first\nStatus changed to approved: looks good", got.Notes)
}

func TestTransition_NoReasonLeavesNotesAlone(t *testing.T) {
	m := NewScheduleStateMachine()
	event := &domain.ScheduledEvent{Status: domain.StatusApproved}

	got, err := m.Transition(event, domain.StatusCompleted, "")

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Empty(t, got.Notes)
}

func TestTransition_CancelledCanBeRescheduled(t *testing.T) {
	m := NewScheduleStateMachine()
	event := &domain.ScheduledEvent{Status: domain.StatusCancelled}

	got, err := m.Transition(event, domain.StatusScheduled, "retrying")

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, got.Status)
}

func TestAllowedTargets_ReturnsCopy(t *testing.T) {
	m := NewScheduleStateMachine()

	targets := m.AllowedTargets(domain.StatusScheduled)
	assert.ElementsMatch(t,
		[]domain.ScheduleStatus{domain.StatusApproved, domain.StatusRejected, domain.StatusCancelled},
		targets)

	// Mutating the returned slice must not corrupt the table.
	targets[0] = domain.StatusCompleted
	assert.False(t, m.CanTransition(domain.StatusScheduled, domain.StatusCompleted))
}

func TestAllowedTargets_UnknownStatusIsEmpty(t *testing.T) {
	m := NewScheduleStateMachine()
	assert.Empty(t, m.AllowedTargets(domain.ScheduleStatus("bogus")))
}
