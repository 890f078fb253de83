package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/mes-portal/internal/auth"
	"github.com/spec-kit/mes-portal/internal/config"
	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/seed"
	apperrors "github.com/spec-kit/mes-portal/pkg/util"
)

// AuthService authenticates portal accounts against an in-memory directory
// and issues role-bearing tokens.
type AuthService struct {
	byID       map[string]*domain.User
	byUsername map[string]*domain.User
	tokenMgr   *auth.TokenManager
	logger     *zap.Logger
}

// NewAuthService hashes the seeded accounts and builds the directory.
func NewAuthService(cfg config.AuthConfig, accounts []seed.UserSeed, logger *zap.Logger) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthService{
		byID:       make(map[string]*domain.User, len(accounts)),
		byUsername: make(map[string]*domain.User, len(accounts)),
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		logger:     logger,
	}
	for _, account := range accounts {
		key := strings.ToLower(account.Username)
		if _, dup := s.byUsername[key]; dup {
			return nil, fmt.Errorf("duplicate username %q", account.Username)
		}
		hash, err := auth.HashPassword(account.Password, cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", account.Username, err)
		}
		user := &domain.User{
			ID:           account.ID,
			Username:     account.Username,
			Name:         account.Name,
			Role:         account.Role,
			PasswordHash: hash,
		}
		s.byID[user.ID] = user
		s.byUsername[key] = user
	}
	return s, nil
}

// Login verifies credentials and returns the user with a signed token.
func (s *AuthService) Login(_ context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, ok := s.byUsername[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		s.logger.Info("login rejected", zap.String("username", username))
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", zap.String("username", username))
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	s.logger.Info("login", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, token, exp, nil
}

// GetUser returns the account with id.
func (s *AuthService) GetUser(_ context.Context, id string) (*domain.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
