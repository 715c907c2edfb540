package migration

import (
	"gorm.io/gorm"

	"github.com/youpolonia/cms-sub038/internal/domain"
	"github.com/youpolonia/cms-sub038/internal/middleware"
)

// Run executes AutoMigrate for all scheduler tables.
// Creates tables when missing, adds new columns and indexes otherwise.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.ContentVersion{},
		&domain.ScheduledEvent{},
		&domain.Batch{},
		&domain.BatchItem{},
		&domain.Notification{},
		&middleware.AuditLog{},
	)
}
