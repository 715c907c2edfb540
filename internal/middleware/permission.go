package middleware

import (
	"sync"

	"github.com/youpolonia/cms-sub038/internal/service"
)

// Minimum member levels per scheduling action. Approvals and batch
// submissions need editor rights; plain scheduling needs author rights.
var actionLevels = map[string]int{
	service.ActionScheduleCreate: 2,
	service.ActionScheduleUpdate: 4,
	service.ActionScheduleCancel: 2,
	service.ActionBatchSchedule:  4,
}

// LevelPermissionChecker is the production permission gate: it compares
// a user's member level, captured from their verified token claims,
// against the minimum level required for the action.
type LevelPermissionChecker struct {
	mu     sync.RWMutex
	levels map[string]int
}

// NewLevelPermissionChecker creates a permission checker
func NewLevelPermissionChecker() *LevelPermissionChecker {
	return &LevelPermissionChecker{levels: make(map[string]int)}
}

// RecordLevel remembers the member level seen in a verified token.
// Called by the auth middleware on every authenticated request.
func (p *LevelPermissionChecker) RecordLevel(userID string, level int) {
	p.mu.Lock()
	p.levels[userID] = level
	p.mu.Unlock()
}

// HasPermission reports whether the user may perform the action
func (p *LevelPermissionChecker) HasPermission(userID, action string, _ uint64) (bool, error) {
	required, known := actionLevels[action]
	if !known {
		return false, nil
	}
	p.mu.RLock()
	level := p.levels[userID]
	p.mu.RUnlock()
	return level >= required, nil
}
