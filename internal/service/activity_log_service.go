package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/mapper"
	"github.com/saqrcrm/sales-api/internal/repository"
)

// ActivityLogService reads the append-only audit trail
type ActivityLogService struct {
	activityLogRepo *repository.ActivityLogRepository
	logger          *zap.Logger
}

// NewActivityLogService creates a new activity log service
func NewActivityLogService(activityLogRepo *repository.ActivityLogRepository, logger *zap.Logger) *ActivityLogService {
	return &ActivityLogService{activityLogRepo: activityLogRepo, logger: logger}
}

// List returns a page of log entries, newest first
func (s *ActivityLogService) List(ctx context.Context, page, pageSize int) (*domain.PaginatedResponse[domain.ActivityLogEntryDTO], error) {
	entries, total, err := s.activityLogRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity log: %w", err)
	}

	resp := domain.NewPaginatedResponse(mapper.ToActivityLogEntryDTOs(entries), total, page, pageSize)
	return &resp, nil
}

// ListByUser returns the most recent entries written by a user
func (s *ActivityLogService) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ActivityLogEntryDTO, error) {
	entries, err := s.activityLogRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list user activity log: %w", err)
	}
	return mapper.ToActivityLogEntryDTOs(entries), nil
}
