package common

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/youpolonia/cms-sub038/internal/domain"
)

func TestAsSchedulingConflict_ExtractsWrappedError(t *testing.T) {
	report := domain.ConflictReport{
		Conflicts: []domain.Conflict{{Kind: domain.ConflictTimeOverlap}},
	}
	err := fmt.Errorf("create event: %w", NewSchedulingConflictError(report))

	sce := AsSchedulingConflict(err)
	if assert.NotNil(t, sce) {
		assert.Len(t, sce.Report.Conflicts, 1)
		assert.Equal(t, domain.ConflictTimeOverlap, sce.Report.Conflicts[0].Kind)
	}
}

func TestAsSchedulingConflict_NilForOtherErrors(t *testing.T) {
	assert.Nil(t, AsSchedulingConflict(nil))
	assert.Nil(t, AsSchedulingConflict(ErrEventNotFound))
	assert.Nil(t, AsSchedulingConflict(NewInvalidTransitionError("completed", "scheduled")))
}

func TestInvalidTransitionError_NamesBothStates(t *testing.T) {
	err := NewInvalidTransitionError("completed", "scheduled")
	assert.Equal(t, "invalid transition from completed to scheduled", err.Error())
	assert.True(t, IsInvalidTransition(fmt.Errorf("update status: %w", err)))
}
