package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/board"
	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/mapper"
	"github.com/saqrcrm/sales-api/internal/repository"
)

// BoardService serves the kanban view of the deal pipeline. Card order
// lives in memory; stage membership is persisted through the deal
// pipeline rules.
type BoardService struct {
	board           *board.Board
	dealRepo        *repository.DealRepository
	userRepo        *repository.UserRepository
	historyRepo     *repository.DealStageHistoryRepository
	activityLogRepo *repository.ActivityLogRepository
	logger          *zap.Logger
}

// NewBoardService creates a board service and loads the current pipeline
func NewBoardService(
	b *board.Board,
	dealRepo *repository.DealRepository,
	userRepo *repository.UserRepository,
	historyRepo *repository.DealStageHistoryRepository,
	activityLogRepo *repository.ActivityLogRepository,
	logger *zap.Logger,
) *BoardService {
	return &BoardService{
		board:           b,
		dealRepo:        dealRepo,
		userRepo:        userRepo,
		historyRepo:     historyRepo,
		activityLogRepo: activityLogRepo,
		logger:          logger,
	}
}

// Refresh rebuilds the board from the database
func (s *BoardService) Refresh(ctx context.Context) error {
	deals, err := s.dealRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load deals: %w", err)
	}
	s.board.Load(deals)
	return nil
}

// View returns the board columns with full deal cards, scoped to the
// caller's visibility
func (s *BoardService) View(ctx context.Context) (map[domain.DealStatus][]domain.DealDTO, error) {
	deals, err := s.dealRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load deals: %w", err)
	}

	byID := make(map[uuid.UUID]*domain.Deal, len(deals))
	for i := range deals {
		byID[deals[i].ID] = &deals[i]
		// Cards created since the last refresh join their column
		s.ensureOnBoard(&deals[i])
	}

	view := make(map[domain.DealStatus][]domain.DealDTO)
	for _, status := range []domain.DealStatus{
		domain.DealStatusNewOpportunity,
		domain.DealStatusMeetingScheduled,
		domain.DealStatusProposalSent,
		domain.DealStatusNegotiation,
		domain.DealStatusWon,
		domain.DealStatusLost,
	} {
		cards := make([]domain.DealDTO, 0)
		for _, id := range s.board.Column(status) {
			if deal, ok := byID[id]; ok && deal.Status == status {
				cards = append(cards, mapper.ToDealDTO(deal, nil))
			}
		}
		view[status] = cards
	}
	return view, nil
}

func (s *BoardService) ensureOnBoard(deal *domain.Deal) {
	for _, id := range s.board.Column(deal.Status) {
		if id == deal.ID {
			return
		}
	}
	s.board.Upsert(deal.ID, deal.Status)
}

// Move repositions a card and persists the stage change. The in-memory
// move is applied optimistically and rolled back when the database
// rejects the transition.
func (s *BoardService) Move(ctx context.Context, actor domain.Actor, actorName string, dealID uuid.UUID, req *domain.MoveDealRequest) (*domain.DealDTO, error) {
	if !req.ToStatus.IsValid() {
		return nil, fmt.Errorf("%w: invalid deal status %q", ErrInvalidInput, req.ToStatus)
	}
	if req.ToStatus.IsClosed() {
		return nil, fmt.Errorf("%w: closing a deal goes through win or lose", ErrInvalidInput)
	}

	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	s.ensureOnBoard(deal)

	if !domain.CanMutateRecord(actor, domain.ResourceDeals, deal.OwnerID, s.ownerGroup(ctx, deal.OwnerID)) {
		return nil, ErrPermissionDenied
	}
	if deal.Status.IsClosed() {
		return nil, ErrDealNotOpen
	}

	snapshot, err := s.board.Move(dealID, req.ToStatus, req.BeforeID)
	if err != nil {
		return nil, err
	}

	if deal.Status != req.ToStatus {
		fromStatus := deal.Status
		if err := s.dealRepo.UpdateStatus(ctx, dealID, req.ToStatus); err != nil {
			s.board.Restore(snapshot)
			return nil, fmt.Errorf("failed to persist stage change: %w", err)
		}
		deal.Status = req.ToStatus

		if err := s.historyRepo.RecordTransition(ctx, dealID, &fromStatus, req.ToStatus, actor.ID, actorName, "moved on board"); err != nil {
			s.logger.Warn("failed to record stage transition", zap.Error(err))
		}
		s.logAction(ctx, actor, actorName, fmt.Sprintf("moved deal %q to %s", deal.Title, req.ToStatus), deal.ID)
	}

	dto := mapper.ToDealDTO(deal, nil)
	return &dto, nil
}

func (s *BoardService) logAction(ctx context.Context, actor domain.Actor, actorName, action string, entityID uuid.UUID) {
	entry := &domain.ActivityLogEntry{
		UserID:     actor.ID,
		UserName:   actorName,
		Action:     action,
		EntityType: "deal",
		EntityID:   &entityID,
	}
	if err := s.activityLogRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write activity log entry",
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *BoardService) ownerGroup(ctx context.Context, ownerID uuid.UUID) *uuid.UUID {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil
	}
	return owner.GroupID
}
