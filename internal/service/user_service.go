package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/mapper"
	"github.com/saqrcrm/sales-api/internal/repository"
)

// UserService handles user administration
type UserService struct {
	userRepo   *repository.UserRepository
	groupRepo  *repository.GroupRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo *repository.UserRepository, groupRepo *repository.GroupRepository, bcryptCost int, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:   userRepo,
		groupRepo:  groupRepo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Create registers a new user account
func (s *UserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.UserDTO, error) {
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: invalid role %q", ErrInvalidInput, req.Role)
	}
	scope := req.Scope
	if scope == "" {
		scope = domain.ScopeAll
	}
	if !scope.IsValid() {
		return nil, fmt.Errorf("%w: invalid scope %q", ErrInvalidInput, scope)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if req.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *req.GroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: group not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve group: %w", err)
		}
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:          req.Name,
		Email:         email,
		PasswordHash:  hash,
		Role:          req.Role,
		Scope:         scope,
		GroupID:       req.GroupID,
		Avatar:        req.Avatar,
		IsActive:      true,
		TargetDeals:   req.TargetDeals,
		TargetCalls:   req.TargetCalls,
		TargetRevenue: req.TargetRevenue,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// GetByID returns a single user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserDTO, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// List returns all users
func (s *UserService) List(ctx context.Context) ([]domain.UserDTO, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return mapper.ToUserDTOs(users), nil
}

// Update applies a partial update to a user account
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateUserRequest) (*domain.UserDTO, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, fmt.Errorf("%w: invalid role %q", ErrInvalidInput, *req.Role)
		}
		user.Role = *req.Role
	}
	if req.Scope != nil {
		if !req.Scope.IsValid() {
			return nil, fmt.Errorf("%w: invalid scope %q", ErrInvalidInput, *req.Scope)
		}
		user.Scope = *req.Scope
	}
	if req.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *req.GroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: group not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve group: %w", err)
		}
		user.GroupID = req.GroupID
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.TargetDeals != nil {
		user.TargetDeals = *req.TargetDeals
	}
	if req.TargetCalls != nil {
		user.TargetCalls = *req.TargetCalls
	}
	if req.TargetRevenue != nil {
		user.TargetRevenue = *req.TargetRevenue
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

// Delete deactivates a user account. Records they own keep their name.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	s.logger.Info("user deactivated", zap.String("user_id", id.String()))
	return nil
}
