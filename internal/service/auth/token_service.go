// Package auth issues and validates the signed session tokens that bind an
// HTTP client to its study session.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/study-buddy/internal/config"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
)

const minSecretLength = 32

// TokenService issues and validates session tokens.
type TokenService interface {
	// IssueToken creates a signed token for the session and returns it with
	// its expiry.
	IssueToken(ctx context.Context, sessionID string) (string, time.Time, error)

	// ValidateToken checks the token and returns its claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of a session token.
type Claims struct {
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// hmacTokenService signs tokens with HMAC-SHA256.
type hmacTokenService struct {
	signingKey    []byte
	tokenLifetime time.Duration
	timeFunc      func() time.Time // Injectable for testing
	clockSkew     time.Duration
}

type jwtSessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a TokenService from the auth configuration. An
// empty secret is replaced by a random one, so tokens do not survive a restart.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, minSecretLength)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generating token secret: %w", err)
		}
		secret = []byte(hex.EncodeToString(secret))
	}
	return newTokenService(secret, cfg.TokenLifetime(), time.Now)
}

func newTokenService(secret []byte, lifetime time.Duration, timeFunc func() time.Time) (*hmacTokenService, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakSecret
	}
	if lifetime <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}
	return &hmacTokenService{
		signingKey:    secret,
		tokenLifetime: lifetime,
		timeFunc:      timeFunc,
		clockSkew:     2 * time.Minute,
	}, nil
}

// IssueToken creates a signed session token.
func (s *hmacTokenService) IssueToken(ctx context.Context, sessionID string) (string, time.Time, error) {
	log := logger.FromContext(ctx)
	if sessionID == "" {
		return "", time.Time{}, errors.New("session id cannot be empty")
	}

	now := s.timeFunc()
	expiresAt := now.Add(s.tokenLifetime)
	claims := jwtSessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign session token",
			"error", err,
			"session_id", sessionID,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", time.Time{}, fmt.Errorf("failed to sign session token with HMAC-SHA256: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a session token and returns its claims.
func (s *hmacTokenService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := s.timeFunc()
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtSessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("session token expired", "error", err)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("session token not yet valid", "error", err)
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("session token rejected", "error", err, "error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*jwtSessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		log.Debug("session token has invalid claims")
		return nil, ErrInvalidToken
	}

	return &Claims{
		SessionID: claims.SessionID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
