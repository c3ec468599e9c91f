package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/mapper"
	"github.com/saqrcrm/sales-api/internal/repository"
)

// AuthService handles login, logout and password recovery
type AuthService struct {
	userRepo    *repository.UserRepository
	sessions    *auth.SessionStore
	resetTokens *auth.ResetTokenIssuer
	bcryptCost  int
	logger      *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo *repository.UserRepository,
	sessions *auth.SessionStore,
	resetTokens *auth.ResetTokenIssuer,
	bcryptCost int,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessions:    sessions,
		resetTokens: resetTokens,
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

// Login verifies credentials and opens a session. The returned token goes
// into the session cookie.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (string, *domain.UserDTO, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return "", nil, ErrUserInactive
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, &auth.Session{
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		Scope:   user.Scope,
		GroupID: user.GroupID,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	dto := mapper.ToUserDTO(user)
	return token, &dto, nil
}

// Logout tears down the session behind the given token
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ForgotPassword issues a reset token for the given email. The outcome is
// identical whether or not the email is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := s.resetTokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue reset token: %w", err)
	}
	return token, nil
}

// ResetPassword verifies a reset token and stores the new password hash
func (s *AuthService) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error {
	userID, err := s.resetTokens.Verify(req.Token)
	if err != nil {
		return ErrUnauthorized
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password reset", zap.String("user_id", userID.String()))
	return nil
}
