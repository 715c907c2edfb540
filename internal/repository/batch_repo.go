package repository

import (
	"context"
	"errors"

	"github.com/youpolonia/cms-sub038/internal/common"
	"github.com/youpolonia/cms-sub038/internal/domain"
	"gorm.io/gorm"
)

// BatchRepository defines the interface for batch data access
type BatchRepository interface {
	// CreateWithItems persists the batch and all its items atomically,
	// every item starting out pending.
	CreateWithItems(ctx context.Context, batch *domain.Batch, items []*domain.BatchItem) error
	FindByBatchID(ctx context.Context, batchID string) (*domain.Batch, error)
	ListItems(ctx context.Context, batchID string) ([]*domain.BatchItem, error)
	UpdateItem(ctx context.Context, item *domain.BatchItem) error
	// Progress aggregates live per-item counts straight from storage.
	Progress(ctx context.Context, batchID string) (*domain.BatchProgress, error)
}

// batchRepository implements BatchRepository with GORM
type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository creates a new BatchRepository
func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

// CreateWithItems creates a batch and its items in one transaction
func (r *batchRepository) CreateWithItems(ctx context.Context, batch *domain.Batch, items []*domain.BatchItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return err
		}
		for _, item := range items {
			item.BatchID = batch.BatchID
			if err := tx.Create(item).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByBatchID finds a batch by its opaque token
func (r *batchRepository) FindByBatchID(ctx context.Context, batchID string) (*domain.Batch, error) {
	var batch domain.Batch
	err := r.db.WithContext(ctx).Where("batch_id = ?", batchID).First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListItems returns batch items in submitted order
func (r *batchRepository) ListItems(ctx context.Context, batchID string) ([]*domain.BatchItem, error) {
	var items []*domain.BatchItem
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem persists a batch item
func (r *batchRepository) UpdateItem(ctx context.Context, item *domain.BatchItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Progress aggregates item counts for a batch from the live item rows
func (r *batchRepository) Progress(ctx context.Context, batchID string) (*domain.BatchProgress, error) {
	if _, err := r.FindByBatchID(ctx, batchID); err != nil {
		return nil, err
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	err := r.db.WithContext(ctx).Model(&domain.BatchItem{}).
		Select("status, COUNT(*) as count").
		Where("batch_id = ?", batchID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	progress := &domain.BatchProgress{BatchID: batchID}
	for _, c := range counts {
		switch c.Status {
		case domain.BatchItemPending:
			progress.Pending = c.Count
		case domain.BatchItemSucceeded:
			progress.Succeeded = c.Count
		case domain.BatchItemFailed:
			progress.Failed = c.Count
		}
		progress.Total += c.Count
	}
	return progress, nil
}
