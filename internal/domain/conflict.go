package domain

import "time"

// ConflictKind classifies why two scheduling requests collide.
type ConflictKind string

const (
	// ConflictTimeOverlap: two pending events publish within the minimum
	// separation window of each other.
	ConflictTimeOverlap ConflictKind = "time_overlap"
	// ConflictSupersession: a pending publish lands too close after the
	// moment the current version went live (rapid flip-flop protection).
	ConflictSupersession ConflictKind = "supersession"
	// ConflictDuplicateTarget: two active events target the same version
	// of the same content item.
	ConflictDuplicateTarget ConflictKind = "duplicate_target"
)

// Resolution strategies accepted by the resolve operation.
const (
	StrategyKeepLatest     = "keep_latest"
	StrategyReschedule     = "reschedule"
	StrategyManualOverride = "manual_override"
)

// Conflict describes one conflicting pair found in a snapshot. EventID of
// zero denotes the not-yet-persisted candidate; OtherEventID of zero
// denotes the current published version.
type Conflict struct {
	Kind         ConflictKind `json:"kind"`
	ContentID    uint64       `json:"content_id"`
	EventID      uint64       `json:"event_id"`
	OtherEventID uint64       `json:"other_event_id"`
	PublishAt    time.Time    `json:"publish_at"`
	OtherTime    time.Time    `json:"other_time"`
	Detail       string       `json:"detail"`
}

// ConflictReport enumerates every conflicting pair detected in one
// snapshot. It is a value type: resolvers produce it purely, callers
// decide what to do with it.
type ConflictReport struct {
	Conflicts []Conflict `json:"conflicts"`
}

// HasConflicts reports whether the snapshot contains any conflict.
func (r ConflictReport) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// ResolutionPlan is the pure output of conflict-resolution planning: the
// events to cancel and the (possibly shifted) publish time to use.
type ResolutionPlan struct {
	Strategy  string
	PublishAt time.Time
	CancelIDs []uint64
	Note      string
}
