package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
	"github.com/youpolonia/cms-sub038/internal/middleware"
	"github.com/youpolonia/cms-sub038/internal/service"
)

// VersionHandler handles content version requests
type VersionHandler struct {
	versions *service.VersionService
}

// NewVersionHandler creates a new VersionHandler
func NewVersionHandler(versions *service.VersionService) *VersionHandler {
	return &VersionHandler{versions: versions}
}

// Create handles POST /api/v1/contents/:contentID/versions
func (h *VersionHandler) Create(c *gin.Context) {
	contentID, err := parseIDParam(c, "contentID")
	if err != nil {
		common.Error(c, http.StatusBadRequest, "invalid content id", err)
		return
	}

	var req domain.CreateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	version, err := h.versions.CreateVersion(c.Request.Context(),
		contentID, req.ContentData, middleware.GetUserID(c), middleware.GetTenantID(c))
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	common.Created(c, version.ToResponse())
}

// List handles GET /api/v1/contents/:contentID/versions
//
// Returns the current version plus every version still referenced by an
// active scheduled event.
func (h *VersionHandler) List(c *gin.Context) {
	contentID, err := parseIDParam(c, "contentID")
	if err != nil {
		common.Error(c, http.StatusBadRequest, "invalid content id", err)
		return
	}

	versions, err := h.versions.GetVersions(c.Request.Context(), contentID, middleware.GetTenantID(c))
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	common.Success(c, versions)
}

// Get handles GET /api/v1/versions/:id
func (h *VersionHandler) Get(c *gin.Context) {
	versionID, err := parseIDParam(c, "id")
	if err != nil {
		common.Error(c, http.StatusBadRequest, "invalid version id", err)
		return
	}

	version, err := h.versions.GetVersion(c.Request.Context(), versionID)
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	common.Success(c, version.ToResponse())
}
