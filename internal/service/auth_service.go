package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civic-kit/issue-service/internal/auth"
	"github.com/civic-kit/issue-service/internal/domain"
	"github.com/civic-kit/issue-service/internal/repository"
	apperrors "github.com/civic-kit/issue-service/pkg/util"
)

// AuthService authenticates console staff.
type AuthService struct {
	staff  repository.StaffRepository
	tokens *auth.TokenManager
	now    Clock
}

// NewAuthService constructs the service.
func NewAuthService(staff repository.StaffRepository, tokens *auth.TokenManager, now Clock) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{staff: staff, tokens: tokens, now: now}
}

// TokenManager exposes the underlying token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Login verifies credentials and issues a staff token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.Staff, error) {
	staff, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return "", time.Time{}, nil, apperrors.MapError(err)
	}
	if !staff.Active {
		return "", time.Time{}, nil, apperrors.NewForbidden("staff account inactive")
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(staff)
	if err != nil {
		return "", time.Time{}, nil, apperrors.MapError(err)
	}
	_ = s.staff.RecordLogin(ctx, staff.ID, s.now())
	return token, expiresAt, staff, nil
}
