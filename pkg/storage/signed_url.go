package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DownloadClaims is what a report download token vouches for.
type DownloadClaims struct {
	ReportID string `json:"rid"`
	Format   string `json:"fmt"`
	Path     string `json:"path"`
	jwt.RegisteredClaims
}

// Expiry returns the token expiry, or the zero time when absent.
func (c *DownloadClaims) Expiry() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// SignedURLSigner issues and checks HS256 download tokens. Tokens are compact JWTs,
// which only use URL-safe characters and so fit in a single path segment.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer. A non-positive ttl means 24h.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate signs a token for the report file at relPath.
func (s *SignedURLSigner) Generate(reportID, format, relPath string) (string, time.Time, error) {
	if reportID == "" || format == "" || relPath == "" {
		return "", time.Time{}, errors.New("report id, format and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("signing secret missing")
	}
	issued := s.now()
	expiresAt := issued.Add(s.ttl)
	claims := DownloadClaims{
		ReportID: reportID,
		Format:   format,
		Path:     relPath,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   reportID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign download token: %w", err)
	}
	return token, time.Unix(expiresAt.Unix(), 0), nil
}

// Parse verifies token and returns its claims. allowExpired skips the expiry check
// so cleanup can still locate the files of expired reports.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (*DownloadClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now)}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	claims := &DownloadClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid download token: %w", err)
	}
	if !parsed.Valid || claims.ReportID == "" || claims.Path == "" {
		return nil, errors.New("invalid download token")
	}
	return claims, nil
}
