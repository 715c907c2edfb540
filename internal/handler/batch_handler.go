package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
	"github.com/youpolonia/cms-sub038/internal/middleware"
	"github.com/youpolonia/cms-sub038/internal/service"
)

// BatchHandler handles batch scheduling requests
type BatchHandler struct {
	batches *service.BatchService
}

// NewBatchHandler creates a new BatchHandler
func NewBatchHandler(batches *service.BatchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

// Schedule handles POST /api/v1/batches/schedule
func (h *BatchHandler) Schedule(c *gin.Context) {
	var req domain.ScheduleBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.batches.ScheduleBatch(c.Request.Context(), req.Items,
		middleware.GetUserID(c), middleware.GetTenantID(c))
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	common.Created(c, result)
}

// CheckConflicts handles POST /api/v1/batches/conflicts
//
// Read-only pre-flight: reports conflicts per item without creating events.
func (h *BatchHandler) CheckConflicts(c *gin.Context) {
	var req domain.ScheduleBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	results, err := h.batches.CheckConflicts(c.Request.Context(), req.Items, middleware.GetTenantID(c))
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	common.Success(c, results)
}

// Progress handles GET /api/v1/batches/:batchID/progress
func (h *BatchHandler) Progress(c *gin.Context) {
	batchID := c.Param("batchID")
	if batchID == "" {
		common.Error(c, http.StatusBadRequest, "missing batch id", nil)
		return
	}

	progress, err := h.batches.GetProgress(c.Request.Context(), batchID)
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	common.Success(c, progress)
}

// Items handles GET /api/v1/batches/:batchID/items
func (h *BatchHandler) Items(c *gin.Context) {
	batchID := c.Param("batchID")
	if batchID == "" {
		common.Error(c, http.StatusBadRequest, "missing batch id", nil)
		return
	}

	items, err := h.batches.ListItems(c.Request.Context(), batchID)
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	common.Success(c, items)
}

// ContentStatus handles POST /api/v1/batches/content-status
//
// Bulk lookup of the latest schedule status per content item.
func (h *BatchHandler) ContentStatus(c *gin.Context) {
	var req domain.ContentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	statuses, err := h.batches.GetStatus(c.Request.Context(), req.ContentIDs, middleware.GetTenantID(c))
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	common.Success(c, statuses)
}
