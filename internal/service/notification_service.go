package service

import (
	"context"

	"github.com/youpolonia/cms-sub038/internal/domain"
	"github.com/youpolonia/cms-sub038/internal/repository"
)

// NotificationService persists user notifications. It is the production
// Notifier implementation.
type NotificationService struct {
	repo *repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify stores a notification row for the user
func (s *NotificationService) Notify(ctx context.Context, userID, title, message string) error {
	return s.repo.Create(ctx, &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
	})
}

// GetList returns paginated notifications for a user
func (s *NotificationService) GetList(ctx context.Context, userID string, page, limit int) (*domain.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit
	notifications, total, err := s.repo.GetList(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	unread, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.NotificationListResponse{
		Items:       notifications,
		Total:       total,
		UnreadCount: unread,
		Page:        page,
		Limit:       limit,
	}, nil
}

// MarkAsRead marks a notification as read
func (s *NotificationService) MarkAsRead(ctx context.Context, id uint64) error {
	return s.repo.MarkAsRead(ctx, id)
}
