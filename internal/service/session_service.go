package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-hub-api/internal/dto"
	"github.com/noah-isme/campus-hub-api/internal/models"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
)

type sessionRepository interface {
	Session(ctx context.Context) (*models.Session, error)
	SaveSession(ctx context.Context, session models.Session) error
	ClearSession(ctx context.Context) error
}

// SessionServiceConfig carries token validation settings.
type SessionServiceConfig struct {
	Secret string
	Issuer string
}

// SessionService resolves the acting session. Tokens are validated here but issued elsewhere.
type SessionService struct {
	repo      sessionRepository
	validator *validator.Validate
	cfg       SessionServiceConfig
	logger    *zap.Logger
}

// NewSessionService constructs the service.
func NewSessionService(repo sessionRepository, validate *validator.Validate, cfg SessionServiceConfig, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, validator: validate, cfg: cfg, logger: logger}
}

// ValidateToken parses an HS256 token and returns the session it carries.
func (s *SessionService) ValidateToken(tokenString string) (*models.Session, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	session := claims.Session()
	if err := s.validator.Struct(session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "token carries an invalid session")
	}
	return &session, nil
}

// Stored returns the stored session or ErrSessionNotStored.
func (s *SessionService) Stored(ctx context.Context) (*models.Session, error) {
	session, err := s.repo.Session(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load session")
	}
	if session == nil {
		return nil, appErrors.ErrSessionNotStored
	}
	return session, nil
}

// Store replaces the stored session.
func (s *SessionService) Store(ctx context.Context, req dto.StoreSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid payload")
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	session := models.Session{Email: req.Email, Role: role}
	if err := s.repo.SaveSession(ctx, session); err != nil {
		return nil, storageError(err, "failed to save session")
	}
	s.logger.Info("session stored", zap.String("email", session.Email), zap.String("role", string(session.Role)))
	return &session, nil
}

// Clear removes the stored session.
func (s *SessionService) Clear(ctx context.Context) error {
	if err := s.repo.ClearSession(ctx); err != nil {
		return storageError(err, "failed to clear session")
	}
	return nil
}
