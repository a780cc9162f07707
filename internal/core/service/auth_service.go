package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/evchat/chat-gateway/internal/core/domain"
	"github.com/evchat/chat-gateway/internal/core/ports"
)

// LoginThrottle limits failed login attempts per username.
type LoginThrottle interface {
	Allow(ctx context.Context, username string) (bool, error)
	Fail(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// AuthService verifies credentials against the user store and mints
// session tokens. The store is read-only from this service's view.
type AuthService struct {
	repo      ports.UserRepository
	throttle  LoginThrottle // optional
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, throttle LoginThrottle, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, throttle: throttle, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

// Verify looks the user up by exact username and compares the SHA-256 hex
// digest of the submitted password against the stored hash. Hex case is
// normalized before comparing; the comparison itself is constant-time.
func (s *AuthService) Verify(ctx context.Context, username, password string) (domain.SessionIdentity, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return domain.SessionIdentity{}, err
	}

	sum := sha256.Sum256([]byte(password))
	submitted := hex.EncodeToString(sum[:])
	stored := strings.ToLower(user.PasswordHash)

	if subtle.ConstantTimeCompare([]byte(submitted), []byte(stored)) != 1 {
		return domain.SessionIdentity{}, domain.ErrBadPassword
	}

	return domain.SessionIdentity{Username: user.Username, DisplayName: user.DisplayName}, nil
}

// Login verifies credentials and returns a signed session token. When a
// throttle is configured, usernames with too many recent failures are
// rejected before the store is consulted.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.SessionIdentity, error) {
	if username == "" || password == "" {
		return "", domain.SessionIdentity{}, domain.ErrBadPassword
	}

	if s.throttle != nil {
		ok, err := s.throttle.Allow(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login throttle check failed, allowing attempt")
		} else if !ok {
			return "", domain.SessionIdentity{}, domain.ErrTooManyAttempts
		}
	}

	identity, err := s.Verify(ctx, username, password)
	if err != nil {
		if s.throttle != nil {
			if failErr := s.throttle.Fail(ctx, username); failErr != nil {
				s.log.Warn().Err(failErr).Str("username", username).Msg("failed to record login failure")
			}
		}
		s.log.Info().Err(err).Str("username", username).Msg("login rejected")
		return "", domain.SessionIdentity{}, err
	}

	if s.throttle != nil {
		if resetErr := s.throttle.Reset(ctx, username); resetErr != nil {
			s.log.Warn().Err(resetErr).Str("username", username).Msg("failed to reset login failures")
		}
	}

	token, err := s.generateToken(identity)
	if err != nil {
		return "", domain.SessionIdentity{}, err
	}

	s.log.Info().Str("username", identity.Username).Msg("login successful")
	return token, identity, nil
}

func (s *AuthService) generateToken(identity domain.SessionIdentity) (string, error) {
	claims := jwt.MapClaims{
		"username": identity.Username,
		"name":     identity.DisplayName,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
