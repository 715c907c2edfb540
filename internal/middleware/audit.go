package middleware

import (
	"context"
	"time"

	"github.com/youpolonia/cms-sub038/pkg/logger"
	"gorm.io/gorm"
)

// AuditLog represents a record of status-changing operations
type AuditLog struct {
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	UserID     string `gorm:"column:user_id;index" json:"user_id"`
	EntityType string `gorm:"column:entity_type;index" json:"entity_type"` // scheduled_event, content_version, batch
	Action     string `gorm:"column:action;index" json:"action"`           // create, resolve, status:*, complete
	EntityID   uint64 `gorm:"column:entity_id" json:"entity_id"`

	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
}

// TableName returns the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogger handles writing audit log entries
type AuditLogger struct {
	db *gorm.DB
}

// NewAuditLogger creates a new AuditLogger
func NewAuditLogger(db *gorm.DB) *AuditLogger {
	if db != nil {
		_ = db.AutoMigrate(&AuditLog{})
	}
	return &AuditLogger{db: db}
}

// LogAccess writes an audit entry to the database. Best effort: the
// write happens async so it never blocks or fails the caller.
func (a *AuditLogger) LogAccess(userID, entityType, action string, entityID uint64) {
	if a.db == nil {
		return
	}

	entry := &AuditLog{
		UserID:     userID,
		EntityType: entityType,
		Action:     action,
		EntityID:   entityID,
	}

	go func() {
		if err := a.db.Create(entry).Error; err != nil {
			logger.GetLogger().Error().Err(err).
				Str("action", action).
				Str("user_id", userID).
				Msg("audit log write failed")
		}
	}()
}

// ListAuditLogs retrieves paginated audit logs with optional filters
func (a *AuditLogger) ListAuditLogs(ctx context.Context, userID, action string, page, perPage int) ([]AuditLog, int64, error) {
	var logs []AuditLog
	var total int64

	query := a.db.WithContext(ctx).Model(&AuditLog{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	err := query.Order("id DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
