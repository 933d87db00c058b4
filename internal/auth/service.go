package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/richrisemansion/ebook-pop/pkg/auth"
	"github.com/richrisemansion/ebook-pop/pkg/config"
	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
	"github.com/richrisemansion/ebook-pop/pkg/security"
)

// Session is the result of a successful admin login.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service authenticates the single configured admin account.
type Service interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Authenticate(ctx context.Context, token string) (*auth.AccessTokenClaims, error)
}

type service struct {
	admin config.AdminConfig
	jwt   config.JWTConfig
	logg  *logger.Logger
	now   func() time.Time
}

func NewService(admin config.AdminConfig, jwt config.JWTConfig, logg *logger.Logger) (Service, error) {
	if admin.Email == "" || admin.PasswordHash == "" {
		return nil, fmt.Errorf("admin credentials not configured")
	}
	if jwt.Secret == "" {
		return nil, fmt.Errorf("jwt secret not configured")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{admin: admin, jwt: jwt, logg: logg, now: time.Now}, nil
}

// Login checks credentials against the configured admin account and mints an
// access token. The email comparison is constant-time alongside the password
// verification so a wrong email is indistinguishable from a wrong password.
func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(s.admin.Email))) == 1
	passwordOK, err := security.VerifyPassword(password, s.admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !emailOK || !passwordOK {
		s.logg.Warn(s.logg.WithField(ctx, "email", email), "admin login rejected")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now()
	token, err := auth.MintAccessToken(s.jwt, now, auth.AccessTokenPayload{Email: s.admin.Email})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	s.logg.Info(ctx, "admin logged in")
	return &Session{
		Token:     token,
		Email:     s.admin.Email,
		Role:      auth.RoleAdmin,
		ExpiresAt: now.Add(time.Duration(s.jwt.ExpirationMinutes) * time.Minute),
	}, nil
}

// Authenticate validates a bearer token and returns its claims.
func (s *service) Authenticate(_ context.Context, token string) (*auth.AccessTokenClaims, error) {
	claims, err := auth.ParseAccessToken(s.jwt, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	return claims, nil
}
