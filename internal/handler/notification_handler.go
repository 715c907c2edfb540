package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/middleware"
	"github.com/youpolonia/cms-sub038/internal/service"
)

// NotificationHandler handles notification requests
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetList handles GET /api/v1/notifications
func (h *NotificationHandler) GetList(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.service.GetList(c.Request.Context(), userID, page, limit)
	if err != nil {
		common.Error(c, http.StatusInternalServerError, "failed to list notifications", err)
		return
	}

	common.Success(c, result)
}

// MarkAsRead handles PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		common.Error(c, http.StatusBadRequest, "invalid notification id", err)
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), id); err != nil {
		common.Error(c, http.StatusInternalServerError, "failed to mark notification as read", err)
		return
	}

	common.Success(c, gin.H{"read": true})
}
