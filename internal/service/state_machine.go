package service

import (
	"fmt"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
)

// scheduleTransitions is the single authoritative transition table for
// scheduled event statuses. Completed is terminal.
var scheduleTransitions = map[domain.ScheduleStatus][]domain.ScheduleStatus{
	domain.StatusScheduled: {domain.StatusApproved, domain.StatusRejected, domain.StatusCancelled},
	domain.StatusPending:   {domain.StatusApproved, domain.StatusRejected, domain.StatusCancelled},
	domain.StatusApproved:  {domain.StatusCompleted, domain.StatusCancelled},
	domain.StatusRejected:  {domain.StatusScheduled, domain.StatusPending},
	domain.StatusCancelled: {domain.StatusScheduled, domain.StatusPending},
	domain.StatusCompleted: {},
}

// ScheduleStateMachine decides whether a status transition is legal. It
// has no storage, clock, or notification dependencies: it mutates the
// event it is given and leaves persistence to the caller.
type ScheduleStateMachine struct{}

// NewScheduleStateMachine creates a new ScheduleStateMachine
func NewScheduleStateMachine() *ScheduleStateMachine {
	return &ScheduleStateMachine{}
}

// CanTransition reports whether from -> to is in the transition table
func (m *ScheduleStateMachine) CanTransition(from, to domain.ScheduleStatus) bool {
	for _, allowed := range scheduleTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the legal targets for a status
func (m *ScheduleStateMachine) AllowedTargets(from domain.ScheduleStatus) []domain.ScheduleStatus {
	targets := scheduleTransitions[from]
	out := make([]domain.ScheduleStatus, len(targets))
	copy(out, targets)
	return out
}

// Transition applies a validated status change to the event, appending a
// note line when a reason is given. The returned error names both states
// so callers can assert on it.
func (m *ScheduleStateMachine) Transition(event *domain.ScheduledEvent, target domain.ScheduleStatus, reason string) (*domain.ScheduledEvent, error) {
	if !m.CanTransition(event.Status, target) {
		return nil, common.NewInvalidTransitionError(string(event.Status), string(target))
	}

	event.Status = target
	if reason != "" {
		line := fmt.Sprintf("Status changed to %s: %s", target, reason)
		if event.Notes != "" {
			event.Notes += "\n"
		}
		event.Notes += line
	}
	return event, nil
}
