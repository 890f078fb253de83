package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/mes-portal/internal/config"
	"github.com/spec-kit/mes-portal/internal/domain"
	"github.com/spec-kit/mes-portal/internal/seed"
	apperrors "github.com/spec-kit/mes-portal/pkg/util"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	accounts, err := seed.Users()
	require.NoError(t, err)
	svc, err := NewAuthService(config.AuthConfig{
		JWTSecret:             "test",
		AccessTokenTTLMinutes: 10,
		BcryptCost:            bcrypt.MinCost,
	}, accounts, nil)
	require.NoError(t, err)
	return svc
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	user, token, _, err := svc.Login(ctx, "QC", "qc123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleQuality, user.Role)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.SubjectID)

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "qc", got.Username)
}

func TestLoginRejected(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t)

	_, _, _, err := svc.Login(ctx, "qc", "wrong")
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	_, _, _, err = svc.Login(ctx, "nobody", "qc123")
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	_, err = svc.GetUser(ctx, "missing")
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestDuplicateUsername(t *testing.T) {
	_, err := NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost}, []seed.UserSeed{
		{ID: "1", Username: "pe", Role: domain.RoleProcess, Password: "a"},
		{ID: "2", Username: "PE", Role: domain.RoleProcess, Password: "b"},
	}, nil)
	assert.Error(t, err)
}
