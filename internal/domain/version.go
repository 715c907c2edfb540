package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Version statuses. A version becomes published only when the scheduled
// event referencing it completes.
const (
	VersionStatusDraft         = "draft"
	VersionStatusPendingReview = "pending_review"
	VersionStatusApproved      = "approved"
	VersionStatusPublished     = "published"
	VersionStatusArchived      = "archived"
)

// ContentVersion represents one saved version of a content item.
// Table: content_versions
// Unique: (content_id, version_number, tenant_id).
// At most one row per (content_id, tenant_id) has is_current=true,
// and is_current=true implies status=published.
type ContentVersion struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentID     uint64    `gorm:"column:content_id;index:idx_content_tenant_version,unique" json:"content_id"`
	VersionNumber int       `gorm:"column:version_number;index:idx_content_tenant_version,unique" json:"version_number"`
	TenantID      string    `gorm:"column:tenant_id;size:64;index:idx_content_tenant_version,unique" json:"tenant_id"`
	ContentData   string    `gorm:"column:content_data;type:longtext" json:"content_data"`
	VersionHash   string    `gorm:"column:version_hash;size:64;index" json:"version_hash"`
	Status        string    `gorm:"column:status;size:20;default:draft" json:"status"`
	IsCurrent     bool      `gorm:"column:is_current;default:false" json:"is_current"`
	CreatedBy     string    `gorm:"column:created_by;size:64" json:"created_by"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for ContentVersion model
func (ContentVersion) TableName() string {
	return "content_versions"
}

// ComputeVersionHash returns the content-addressed digest of a payload,
// used for no-op save detection and integrity checks.
func ComputeVersionHash(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// VersionResponse is the API response format for a content version
type VersionResponse struct {
	ID            uint64    `json:"id"`
	ContentID     uint64    `json:"content_id"`
	VersionNumber int       `json:"version_number"`
	VersionHash   string    `json:"version_hash"`
	Status        string    `json:"status"`
	IsCurrent     bool      `json:"is_current"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToResponse converts ContentVersion to VersionResponse
func (v *ContentVersion) ToResponse() VersionResponse {
	return VersionResponse{
		ID:            v.ID,
		ContentID:     v.ContentID,
		VersionNumber: v.VersionNumber,
		VersionHash:   v.VersionHash,
		Status:        v.Status,
		IsCurrent:     v.IsCurrent,
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt,
	}
}

// CreateVersionRequest is the request body for saving a new version
type CreateVersionRequest struct {
	ContentData string `json:"content_data" binding:"required"`
}

// ContentVersions groups the current version of a content item with all
// versions that still have an active scheduled event.
type ContentVersions struct {
	Current *ContentVersion   `json:"current"`
	Pending []*ContentVersion `json:"pending"`
}
