package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
	"github.com/youpolonia/cms-sub038/internal/middleware"
	"github.com/youpolonia/cms-sub038/internal/service"
)

// ScheduleHandler handles scheduled event requests
type ScheduleHandler struct {
	scheduler *service.SchedulerService
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(scheduler *service.SchedulerService) *ScheduleHandler {
	return &ScheduleHandler{scheduler: scheduler}
}

// Create handles POST /api/v1/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req domain.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	userID := middleware.GetUserID(c)
	tenantID := middleware.GetTenantID(c)

	event, err := h.scheduler.CreateEvent(c.Request.Context(), req.ContentID, req.VersionID, req.PublishAt, userID, tenantID)
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	common.Created(c, event.ToResponse())
}

// Get handles GET /api/v1/schedules/:id
func (h *ScheduleHandler) Get(c *gin.Context) {
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		common.Error(c, http.StatusBadRequest, "invalid event id", err)
		return
	}

	event, err := h.scheduler.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	common.Success(c, event.ToResponse())
}

// ListByContent handles GET /api/v1/contents/:contentID/schedules
func (h *ScheduleHandler) ListByContent(c *gin.Context) {
	contentID, err := parseIDParam(c, "contentID")
	if err != nil {
		common.Error(c, http.StatusBadRequest, "invalid content id", err)
		return
	}

	events, err := h.scheduler.ListEvents(c.Request.Context(), contentID, middleware.GetTenantID(c))
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	responses := make([]domain.EventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, e.ToResponse())
	}
	common.Success(c, responses)
}

// UpdateStatus handles PATCH /api/v1/schedules/:id/status
func (h *ScheduleHandler) UpdateStatus(c *gin.Context) {
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		common.Error(c, http.StatusBadRequest, "invalid event id", err)
		return
	}

	var req domain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	event, err := h.scheduler.UpdateStatus(c.Request.Context(), eventID, req.Status, middleware.GetUserID(c), req.Reason)
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	common.Success(c, event.ToResponse())
}

// Cancel handles DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) Cancel(c *gin.Context) {
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		common.Error(c, http.StatusBadRequest, "invalid event id", err)
		return
	}

	if err := h.scheduler.Cancel(c.Request.Context(), eventID, middleware.GetUserID(c)); err != nil {
		writeScheduleError(c, err)
		return
	}

	common.Success(c, gin.H{"cancelled": true})
}

// Resolve handles POST /api/v1/schedules/resolve
func (h *ScheduleHandler) Resolve(c *gin.Context) {
	var req domain.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	event, err := h.scheduler.Resolve(c.Request.Context(),
		req.ContentID, req.VersionID, req.PublishAt, req.Strategy,
		middleware.GetUserID(c), req.Notes, middleware.GetTenantID(c))
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	common.Created(c, event.ToResponse())
}

// writeScheduleError maps scheduling errors to HTTP responses
func writeScheduleError(c *gin.Context, err error) {
	if sce := common.AsSchedulingConflict(err); sce != nil {
		common.ConflictError(c, sce)
		return
	}

	var ite *common.InvalidTransitionError
	if errors.As(err, &ite) {
		common.Error(c, http.StatusUnprocessableEntity, ite.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, common.ErrPermissionDenied):
		common.Error(c, http.StatusForbidden, "permission denied", nil)
	case errors.Is(err, common.ErrEventNotFound),
		errors.Is(err, common.ErrVersionNotFound),
		errors.Is(err, common.ErrContentNotFound),
		errors.Is(err, common.ErrBatchNotFound):
		common.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, common.ErrPastPublishTime),
		errors.Is(err, common.ErrUnknownStrategy),
		errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrNoContentIDs),
		errors.Is(err, common.ErrBatchTooLarge):
		common.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		common.Error(c, http.StatusInternalServerError, "internal error", err)
	}
}

// parseIDParam parses a numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
