package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-hub-api/internal/dto"
	"github.com/noah-isme/campus-hub-api/internal/models"
	"github.com/noah-isme/campus-hub-api/internal/repository"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
)

func signSession(t *testing.T, secret string, claims models.SessionClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newSessionFixture(issuer string) *SessionService {
	repo := repository.NewBoardRepository(repository.NewMemoryStore(), "", nil)
	return NewSessionService(repo, nil, SessionServiceConfig{Secret: "secret", Issuer: issuer}, nil)
}

func TestValidateToken(t *testing.T) {
	svc := newSessionFixture("campus-hub")
	token := signSession(t, "secret", models.SessionClaims{
		Email: "teacher@campus.edu",
		Role:  models.RoleTeacher,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "campus-hub",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	session, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, teacherSession, *session)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := newSessionFixture("campus-hub")
	valid := jwt.RegisteredClaims{Issuer: "campus-hub", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	cases := map[string]string{
		"wrong secret": signSession(t, "other", models.SessionClaims{Email: "a@campus.edu", Role: models.RoleStudent, RegisteredClaims: valid}),
		"expired": signSession(t, "secret", models.SessionClaims{Email: "a@campus.edu", Role: models.RoleStudent, RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "campus-hub",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}),
		"wrong issuer": signSession(t, "secret", models.SessionClaims{Email: "a@campus.edu", Role: models.RoleStudent, RegisteredClaims: jwt.RegisteredClaims{Issuer: "elsewhere"}}),
		"unknown role": signSession(t, "secret", models.SessionClaims{Email: "a@campus.edu", Role: "dean", RegisteredClaims: valid}),
		"bad email":    signSession(t, "secret", models.SessionClaims{Email: "nope", Role: models.RoleStudent, RegisteredClaims: valid}),
		"garbage":      "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			var appErr *appErrors.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
		})
	}
}

func TestStoredSessionLifecycle(t *testing.T) {
	svc := newSessionFixture("")
	ctx := context.Background()

	_, err := svc.Stored(ctx)
	assert.ErrorIs(t, err, appErrors.ErrSessionNotStored)

	_, err = svc.Store(ctx, dto.StoreSessionRequest{Email: "p@campus.edu", Role: "dean"})
	require.Error(t, err)

	stored, err := svc.Store(ctx, dto.StoreSessionRequest{Email: "p@campus.edu", Role: "president"})
	require.NoError(t, err)
	assert.True(t, stored.Privileged())

	got, err := svc.Stored(ctx)
	require.NoError(t, err)
	assert.Equal(t, *stored, *got)

	require.NoError(t, svc.Clear(ctx))
	_, err = svc.Stored(ctx)
	assert.ErrorIs(t, err, appErrors.ErrSessionNotStored)
}
