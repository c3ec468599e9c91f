package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/mapper"
	"github.com/saqrcrm/sales-api/internal/repository"
)

// NotificationService handles the in-app notification feed
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo *repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo, logger: logger}
}

// List returns a page of the user's notifications
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page, pageSize int, unreadOnly bool, notificationType string) (*domain.PaginatedResponse[domain.NotificationDTO], error) {
	notifications, total, err := s.notificationRepo.ListByUser(ctx, userID, page, pageSize, unreadOnly, notificationType)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	resp := domain.NewPaginatedResponse(mapper.ToNotificationDTOs(notifications), total, page, pageSize)
	return &resp, nil
}

// UnreadCount returns the badge count for the user
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (*domain.UnreadCountDTO, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return &domain.UnreadCountDTO{Count: count}, nil
}

// MarkRead marks a single notification read. Users can only touch their own.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get notification: %w", err)
	}
	if notification.UserID != userID {
		return ErrNotFound
	}

	if err := s.notificationRepo.MarkAsRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead clears the user's unread badge
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notificationRepo.MarkAllAsRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
