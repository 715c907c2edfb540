package domain

import "time"

// Notification represents a message delivered to a user after a schedule
// status change. Delivery is best effort: failures never roll back the
// transition that produced them.
// Table: notifications
type Notification struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;size:64;index" json:"user_id"`
	Title     string    `gorm:"column:title;size:255" json:"title"`
	Message   string    `gorm:"column:message;type:text" json:"message"`
	IsRead    bool      `gorm:"column:is_read;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name
func (Notification) TableName() string {
	return "notifications"
}

// NotificationListResponse represents notification list response
type NotificationListResponse struct {
	Items       []Notification `json:"items"`
	Total       int64          `json:"total"`
	UnreadCount int64          `json:"unread_count"`
	Page        int            `json:"page"`
	Limit       int            `json:"limit"`
}
