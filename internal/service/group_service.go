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

// GroupService handles sales team administration
type GroupService struct {
	groupRepo *repository.GroupRepository
	userRepo  *repository.UserRepository
	db        *gorm.DB
	logger    *zap.Logger
}

// NewGroupService creates a new group service
func NewGroupService(groupRepo *repository.GroupRepository, userRepo *repository.UserRepository, db *gorm.DB, logger *zap.Logger) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		db:        db,
		logger:    logger,
	}
}

// Create creates a new group
func (s *GroupService) Create(ctx context.Context, req *domain.CreateGroupRequest) (*domain.GroupDTO, error) {
	scope := req.Scope
	if scope == "" {
		scope = domain.ScopeAll
	}
	if !scope.IsValid() {
		return nil, fmt.Errorf("%w: invalid scope %q", ErrInvalidInput, scope)
	}

	var managerName string
	if req.ManagerID != nil {
		manager, err := s.userRepo.GetByID(ctx, *req.ManagerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: manager not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve manager: %w", err)
		}
		if !manager.Role.CanLeadGroup() {
			return nil, ErrGroupManagerRole
		}
		managerName = manager.Name
	}

	group := &domain.Group{
		Name:        req.Name,
		ManagerID:   req.ManagerID,
		ManagerName: managerName,
		Scope:       scope,
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	// The manager belongs to the group they lead
	if req.ManagerID != nil {
		manager, err := s.userRepo.GetByID(ctx, *req.ManagerID)
		if err == nil {
			manager.GroupID = &group.ID
			if err := s.userRepo.Update(ctx, manager); err != nil {
				s.logger.Warn("failed to attach manager to group",
					zap.String("group_id", group.ID.String()),
					zap.Error(err))
			}
		}
	}

	dto := mapper.ToGroupDTO(group)
	return &dto, nil
}

// GetByID returns a group with its members
func (s *GroupService) GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupDTO, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	dto := mapper.ToGroupDTO(group)
	return &dto, nil
}

// List returns all groups
func (s *GroupService) List(ctx context.Context) ([]domain.GroupDTO, error) {
	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return mapper.ToGroupDTOs(groups), nil
}

// Update applies a partial update to a group
func (s *GroupService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateGroupRequest) (*domain.GroupDTO, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Scope != nil {
		if !req.Scope.IsValid() {
			return nil, fmt.Errorf("%w: invalid scope %q", ErrInvalidInput, *req.Scope)
		}
		group.Scope = *req.Scope
	}
	if req.ManagerID != nil {
		manager, err := s.userRepo.GetByID(ctx, *req.ManagerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: manager not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve manager: %w", err)
		}
		if !manager.Role.CanLeadGroup() {
			return nil, ErrGroupManagerRole
		}
		group.ManagerID = &manager.ID
		group.ManagerName = manager.Name
	}

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	dto := mapper.ToGroupDTO(group)
	return &dto, nil
}

// Delete removes a group and detaches its members in one transaction.
// Members become groupless users, not deleted ones.
func (s *GroupService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.groupRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get group: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.DetachFromGroup(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to detach members: %w", err)
		}
		if err := s.groupRepo.Delete(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("group deleted", zap.String("group_id", id.String()))
	return nil
}
