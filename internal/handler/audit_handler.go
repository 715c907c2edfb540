package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/middleware"
)

// AuditHandler exposes the audit trail for review
type AuditHandler struct {
	audit *middleware.AuditLogger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(audit *middleware.AuditLogger) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List handles GET /api/v1/audit-logs
func (h *AuditHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	userID := c.Query("user_id")
	action := c.Query("action")

	logs, total, err := h.audit.ListAuditLogs(c.Request.Context(), userID, action, page, perPage)
	if err != nil {
		common.Error(c, http.StatusInternalServerError, "failed to list audit logs", err)
		return
	}

	common.SuccessWithMeta(c, logs, &common.Meta{Page: page, PerPage: perPage, Total: total})
}
