package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/regaloamor/storefront-backend/pkg/auth"
	"github.com/regaloamor/storefront-backend/pkg/config"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
	"github.com/regaloamor/storefront-backend/pkg/logger"
	"github.com/regaloamor/storefront-backend/pkg/security"
)

// LoginRequest is the admin credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the freshly minted access token.
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expira_at"`
}

// Service authenticates the administrator against the configured credential
// pair and mints access tokens.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
}

type service struct {
	admin config.AdminConfig
	jwt   config.JWTConfig
	logg  *logger.Logger
	now   func() time.Time
}

func NewService(admin config.AdminConfig, jwt config.JWTConfig, logg *logger.Logger) (Service, error) {
	if admin.Email == "" || admin.PasswordHash == "" {
		return nil, fmt.Errorf("admin credentials required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{admin: admin, jwt: jwt, logg: logg, now: time.Now}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	expected := strings.ToLower(strings.TrimSpace(s.admin.Email))

	emailMatches := subtle.ConstantTimeCompare([]byte(email), []byte(expected)) == 1

	// Always run the hash comparison so a wrong email costs the same as a
	// wrong password.
	passwordMatches, err := security.VerifyPassword(req.Password, s.admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}

	if !emailMatches || !passwordMatches {
		s.logg.Warn(s.logg.WithField(ctx, "login_email", email), "admin.login.rejected")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "credenciales inválidas")
	}

	now := s.now().UTC()
	token, err := pkgAuth.MintAdminToken(s.jwt, now, expected)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	s.logg.Info(s.logg.WithField(ctx, "login_email", expected), "admin.login.accepted")

	expiresAt := now.Add(time.Duration(s.jwt.ExpirationMinutes) * time.Minute)
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}, nil
}
