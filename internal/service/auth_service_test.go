package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/courtmaster/courtledger-api/internal/models"
	"github.com/courtmaster/courtledger-api/pkg/config"
	appErrors "github.com/courtmaster/courtledger-api/pkg/errors"
)

func authFixture(cfg config.AuthConfig) *AuthService {
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test-secret"
	}
	if cfg.TokenExpiry == 0 {
		cfg.TokenExpiry = time.Hour
	}
	return NewAuthService(cfg, nil, nil)
}

func TestLoginIssuesCoachToken(t *testing.T) {
	svc := authFixture(config.AuthConfig{CoachPassword: "topspin"})

	resp, err := svc.Login(context.Background(), models.LoginRequest{Password: "topspin"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoach, resp.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsCoach())
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := authFixture(config.AuthConfig{CoachPassword: "topspin"})

	_, err := svc.Login(context.Background(), models.LoginRequest{Password: "slice"})
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestLoginPrefersBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("topspin"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := authFixture(config.AuthConfig{
		CoachPassword:     "ignored",
		CoachPasswordHash: string(hash),
	})

	_, err = svc.Login(context.Background(), models.LoginRequest{Password: "topspin"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Password: "ignored"})
	require.Error(t, err)
}

func TestLoginRejectsEmptyConfig(t *testing.T) {
	svc := authFixture(config.AuthConfig{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Password: "anything"})
	require.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := authFixture(config.AuthConfig{CoachPassword: "topspin"})

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := authFixture(config.AuthConfig{CoachPassword: "topspin", TokenExpiry: time.Hour})
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	resp, err := svc.Login(context.Background(), models.LoginRequest{Password: "topspin"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	require.Error(t, err)
}
