package domain

import "time"

// Batch item statuses.
const (
	BatchItemPending   = "pending"
	BatchItemSucceeded = "succeeded"
	BatchItemFailed    = "failed"
)

// Batch groups up to the configured cap of schedule requests submitted
// together. Aggregate counts are derived from the item rows on read,
// never cached at creation time.
// Table: schedule_batches
type Batch struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BatchID   string    `gorm:"column:batch_id;size:36;uniqueIndex" json:"batch_id"`
	TenantID  string    `gorm:"column:tenant_id;size:64;index" json:"tenant_id"`
	CreatedBy string    `gorm:"column:created_by;size:64" json:"created_by"`
	ItemCount int       `gorm:"column:item_count" json:"item_count"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for Batch model
func (Batch) TableName() string {
	return "schedule_batches"
}

// BatchItem is one schedule request inside a batch, in submitted order.
// Only the batch coordinator mutates item rows; the due-event sweep
// never touches them.
// Table: schedule_batch_items
type BatchItem struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BatchID   string    `gorm:"column:batch_id;size:36;index" json:"batch_id"`
	Position  int       `gorm:"column:position" json:"position"`
	ContentID uint64    `gorm:"column:content_id" json:"content_id"`
	VersionID uint64    `gorm:"column:version_id" json:"version_id"`
	PublishAt time.Time `gorm:"column:publish_at" json:"publish_at"`
	Status    string    `gorm:"column:status;size:20;default:pending" json:"status"`
	EventID   *uint64   `gorm:"column:event_id" json:"event_id,omitempty"`
	Error     string    `gorm:"column:error;type:text" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for BatchItem model
func (BatchItem) TableName() string {
	return "schedule_batch_items"
}

// BatchItemRequest is one schedule request within a batch call
type BatchItemRequest struct {
	ContentID uint64    `json:"content_id" binding:"required"`
	VersionID uint64    `json:"version_id" binding:"required"`
	PublishAt time.Time `json:"publish_at" binding:"required"`
}

// ScheduleBatchRequest is the request body for batch scheduling
type ScheduleBatchRequest struct {
	Items []BatchItemRequest `json:"items" binding:"required"`
}

// BatchItemResult is the per-item outcome of a batch schedule call
type BatchItemResult struct {
	Position  int    `json:"position"`
	ContentID uint64 `json:"content_id"`
	VersionID uint64 `json:"version_id"`
	Success   bool   `json:"success"`
	EventID   uint64 `json:"event_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchScheduleResponse is the aggregate response of a batch schedule call
type BatchScheduleResponse struct {
	BatchID string            `json:"batch_id"`
	Results []BatchItemResult `json:"results"`
}

// BatchProgress holds live aggregate counts for a batch
type BatchProgress struct {
	BatchID   string `json:"batch_id"`
	Pending   int64  `json:"pending"`
	Succeeded int64  `json:"succeeded"`
	Failed    int64  `json:"failed"`
	Total     int64  `json:"total"`
}

// BatchConflictResult is the pre-flight conflict report for one item
type BatchConflictResult struct {
	Position  int            `json:"position"`
	ContentID uint64         `json:"content_id"`
	Report    ConflictReport `json:"report"`
}

// ContentStatusRequest asks for the latest event status per content id
type ContentStatusRequest struct {
	ContentIDs []uint64 `json:"content_ids" binding:"required"`
}
