package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/service"
)

// SweepHandler exposes the due-event sweep as a manual trigger, mainly for
// operations and testing. The cron broker runs the same sweep on a schedule.
type SweepHandler struct {
	processor *service.DueEventService
}

// NewSweepHandler creates a new SweepHandler
func NewSweepHandler(processor *service.DueEventService) *SweepHandler {
	return &SweepHandler{processor: processor}
}

type sweepRequest struct {
	// Now overrides the sweep reference time, RFC3339. Defaults to the
	// current UTC time when omitted.
	Now *time.Time `json:"now"`
}

// Trigger handles POST /api/v1/sweep
func (h *SweepHandler) Trigger(c *gin.Context) {
	var req sweepRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	now := time.Now().UTC()
	if req.Now != nil {
		now = req.Now.UTC()
	}

	processed, err := h.processor.ProcessDueEvents(c.Request.Context(), now)
	if err != nil {
		common.Error(c, http.StatusInternalServerError, "sweep failed", err)
		return
	}

	common.Success(c, gin.H{"processed": processed, "now": now})
}
