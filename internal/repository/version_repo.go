package repository

import (
	"context"
	"errors"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
	"gorm.io/gorm"
)

// VersionRepository defines the interface for content version data access.
// It is the only component allowed to mutate content_versions rows.
type VersionRepository interface {
	// CreateNext assigns the next version number for the version's
	// (content_id, tenant_id) pair and persists it, rejecting no-op saves
	// whose hash matches the current published version.
	CreateNext(ctx context.Context, version *domain.ContentVersion) error
	FindByID(ctx context.Context, id uint64) (*domain.ContentVersion, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]*domain.ContentVersion, error)
	// FindCurrent returns the current version or nil when none is live.
	FindCurrent(ctx context.Context, contentID uint64, tenantID string) (*domain.ContentVersion, error)
	ListByContent(ctx context.Context, contentID uint64, tenantID string) ([]*domain.ContentVersion, error)
	// MarkCurrent flips is_current to the given version in its own transaction.
	MarkCurrent(ctx context.Context, versionID uint64) error
	// MarkCurrentTx performs the same flip inside the caller's transaction,
	// so event promotion and version promotion commit atomically.
	MarkCurrentTx(tx *gorm.DB, versionID uint64) error
	UpdateStatus(ctx context.Context, versionID uint64, status string) error
}

// versionRepository implements VersionRepository with GORM
type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

// CreateNext persists a new version with a gapless, monotonic number per
// (content_id, tenant_id). The number assignment, the duplicate-hash
// check, and the insert share one transaction.
func (r *versionRepository) CreateNext(ctx context.Context, version *domain.ContentVersion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.ContentVersion
		err := forUpdate(tx).
			Where("content_id = ? AND tenant_id = ? AND is_current = ?", version.ContentID, version.TenantID, true).
			First(&current).Error
		if err == nil && current.VersionHash == version.VersionHash {
			return common.ErrDuplicateVersion
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var maxNumber *int
		err = tx.Model(&domain.ContentVersion{}).
			Where("content_id = ? AND tenant_id = ?", version.ContentID, version.TenantID).
			Select("MAX(version_number)").
			Scan(&maxNumber).Error
		if err != nil {
			return err
		}
		if maxNumber == nil {
			version.VersionNumber = 1
		} else {
			version.VersionNumber = *maxNumber + 1
		}

		return tx.Create(version).Error
	})
}

// FindByID finds a version by ID
func (r *versionRepository) FindByID(ctx context.Context, id uint64) (*domain.ContentVersion, error) {
	var version domain.ContentVersion
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrVersionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// FindByIDs finds versions by a set of IDs
func (r *versionRepository) FindByIDs(ctx context.Context, ids []uint64) ([]*domain.ContentVersion, error) {
	var versions []*domain.ContentVersion
	if len(ids) == 0 {
		return versions, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// FindCurrent returns the current version for a content item, or nil
func (r *versionRepository) FindCurrent(ctx context.Context, contentID uint64, tenantID string) (*domain.ContentVersion, error) {
	var version domain.ContentVersion
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND tenant_id = ? AND is_current = ?", contentID, tenantID, true).
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// ListByContent returns all versions for a content item, newest first
func (r *versionRepository) ListByContent(ctx context.Context, contentID uint64, tenantID string) ([]*domain.ContentVersion, error) {
	var versions []*domain.ContentVersion
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND tenant_id = ?", contentID, tenantID).
		Order("version_number DESC").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// MarkCurrent promotes a version in its own transaction
func (r *versionRepository) MarkCurrent(ctx context.Context, versionID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.MarkCurrentTx(tx, versionID)
	})
}

// MarkCurrentTx demotes the previous current version (if any) and promotes
// the given one, under row locks so two versions can never hold
// is_current=true for the same content item.
func (r *versionRepository) MarkCurrentTx(tx *gorm.DB, versionID uint64) error {
	var version domain.ContentVersion
	err := forUpdate(tx).
		Where("id = ?", versionID).
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrVersionNotFound
	}
	if err != nil {
		return err
	}
	if version.IsCurrent {
		return common.ErrAlreadyCurrent
	}

	err = tx.Model(&domain.ContentVersion{}).
		Where("content_id = ? AND tenant_id = ? AND is_current = ? AND id <> ?",
			version.ContentID, version.TenantID, true, version.ID).
		Updates(map[string]interface{}{
			"is_current": false,
			"status":     domain.VersionStatusArchived,
		}).Error
	if err != nil {
		return err
	}

	return tx.Model(&domain.ContentVersion{}).
		Where("id = ?", version.ID).
		Updates(map[string]interface{}{
			"is_current": true,
			"status":     domain.VersionStatusPublished,
		}).Error
}

// UpdateStatus sets a version's workflow status
func (r *versionRepository) UpdateStatus(ctx context.Context, versionID uint64, status string) error {
	result := r.db.WithContext(ctx).Model(&domain.ContentVersion{}).
		Where("id = ?", versionID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrVersionNotFound
	}
	return nil
}
