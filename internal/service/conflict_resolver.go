package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
)

// ConflictResolver detects scheduling conflicts in a snapshot of one
// content item's state and plans their resolution. Both operations are
// pure: same snapshot in, same answer out, no side effects, so they can
// run speculatively inside a pending transaction.
type ConflictResolver struct {
	minSeparation time.Duration
}

// NewConflictResolver creates a resolver with the given minimum
// separation window between publish times.
func NewConflictResolver(minSeparation time.Duration) *ConflictResolver {
	return &ConflictResolver{minSeparation: minSeparation}
}

// MinSeparation returns the configured separation window
func (r *ConflictResolver) MinSeparation() time.Duration {
	return r.minSeparation
}

// CheckConflicts enumerates every conflicting pair among the pending
// events and between pending events and the current published version.
// Pending events are compared in publish_at order for determinism.
func (r *ConflictResolver) CheckConflicts(current *domain.ContentVersion, pending []*domain.ScheduledEvent) domain.ConflictReport {
	events := make([]*domain.ScheduledEvent, len(pending))
	copy(events, pending)
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].PublishAt.Equal(events[j].PublishAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].PublishAt.Before(events[j].PublishAt)
	})

	var report domain.ConflictReport
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			a, b := events[i], events[j]
			if gap := absDuration(a.PublishAt.Sub(b.PublishAt)); gap < r.minSeparation {
				report.Conflicts = append(report.Conflicts, domain.Conflict{
					Kind:         domain.ConflictTimeOverlap,
					ContentID:    a.ContentID,
					EventID:      b.ID,
					OtherEventID: a.ID,
					PublishAt:    b.PublishAt,
					OtherTime:    a.PublishAt,
					Detail:       fmt.Sprintf("publish times %s apart, minimum separation is %s", gap, r.minSeparation),
				})
			}
			if a.VersionID == b.VersionID && a.Status.IsActive() && b.Status.IsActive() {
				report.Conflicts = append(report.Conflicts, domain.Conflict{
					Kind:         domain.ConflictDuplicateTarget,
					ContentID:    a.ContentID,
					EventID:      b.ID,
					OtherEventID: a.ID,
					PublishAt:    b.PublishAt,
					OtherTime:    a.PublishAt,
					Detail:       fmt.Sprintf("version %d already targeted by an active event", a.VersionID),
				})
			}
		}
	}

	if current != nil {
		lastPublished := current.UpdatedAt
		for _, e := range events {
			if e.PublishAt.Sub(lastPublished) < r.minSeparation {
				report.Conflicts = append(report.Conflicts, domain.Conflict{
					Kind:      domain.ConflictSupersession,
					ContentID: e.ContentID,
					EventID:   e.ID,
					PublishAt: e.PublishAt,
					OtherTime: lastPublished,
					Detail: fmt.Sprintf("publish within %s of current version going live (version %d)",
						r.minSeparation, current.VersionNumber),
				})
			}
		}
	}

	return report
}

// Plan turns a resolution strategy into a pure plan: which active events
// to cancel and when the new event should publish. Unknown strategies
// fail before any storage is touched.
func (r *ConflictResolver) Plan(strategy string, publishAt time.Time, pending []*domain.ScheduledEvent, notes string) (domain.ResolutionPlan, error) {
	plan := domain.ResolutionPlan{Strategy: strategy, PublishAt: publishAt, Note: notes}

	switch strategy {
	case domain.StrategyKeepLatest:
		for _, e := range pending {
			if e.Status.IsActive() {
				plan.CancelIDs = append(plan.CancelIDs, e.ID)
			}
		}
		plan.Note = fmt.Sprintf("Superseded by keep_latest resolution; %s", notes)

	case domain.StrategyReschedule:
		plan.PublishAt = r.NextFreeSlot(publishAt, pending)
		plan.Note = fmt.Sprintf("Rescheduled from %s to clear conflicts; %s",
			publishAt.Format(time.RFC3339), notes)

	case domain.StrategyManualOverride:
		plan.Note = fmt.Sprintf("Conflict acknowledged by manual override; %s", notes)

	default:
		return domain.ResolutionPlan{}, fmt.Errorf("%w: %q", common.ErrUnknownStrategy, strategy)
	}

	return plan, nil
}

// NextFreeSlot returns the first instant at or after the requested time
// that keeps the minimum separation from every active pending event. The
// scan walks events in publish order, so the answer is deterministic.
func (r *ConflictResolver) NextFreeSlot(requested time.Time, pending []*domain.ScheduledEvent) time.Time {
	events := make([]*domain.ScheduledEvent, 0, len(pending))
	for _, e := range pending {
		if e.Status.IsActive() {
			events = append(events, e)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].PublishAt.Before(events[j].PublishAt)
	})

	slot := requested
	for _, e := range events {
		if absDuration(slot.Sub(e.PublishAt)) < r.minSeparation {
			slot = e.PublishAt.Add(r.minSeparation)
		}
	}
	return slot
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
