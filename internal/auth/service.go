package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/rahulvermadev/tiffinbox-backend/pkg/auth"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/config"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/security"
)

// LoginInput is the dashboard sign-in payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginResult carries the minted token and its expiry.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Email     string    `json:"email"`
}

// Service signs admins in and seeds the first account.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	// EnsureAdmin creates the account if it does not exist yet. Used at
	// startup to seed the dashboard login from configuration.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type service struct {
	logg   *logger.Logger
	repo   Repository
	jwtCfg config.JWTConfig
	pwCfg  config.PasswordConfig
	nowFn  func() time.Time
}

// ServiceParams wire the auth service dependencies.
type ServiceParams struct {
	Logger   *logger.Logger
	Repo     Repository
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Now      func() time.Time
}

// NewService validates dependencies and builds the auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("admin repository required")
	}
	if params.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		logg:   params.Logger,
		repo:   params.Repo,
		jwtCfg: params.JWT,
		pwCfg:  params.Password,
		nowFn:  params.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load admin account")
	}
	if admin == nil {
		// Burn a verify anyway so unknown emails cost the same as wrong
		// passwords.
		_, _ = security.VerifyPassword(input.Password, security.DummyHash)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	ok, err := security.VerifyPassword(input.Password, admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	now := s.nowFn()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		AdminID: admin.ID,
		Email:   admin.Email,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to mint access token")
	}

	admin.LastLoginAt = &now
	if err := s.repo.TouchLastLogin(ctx, admin); err != nil {
		s.logg.Warn(ctx, "failed to record last login")
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		Email:     admin.Email,
	}, nil
}

func (s *service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "admin email and password required")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to look up admin account")
	}
	if existing != nil {
		return nil
	}

	hash, err := security.HashPassword(password, s.pwCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to hash admin password")
	}
	if err := s.repo.Create(ctx, &models.AdminUser{Email: email, PasswordHash: hash}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create admin account")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"email": email})
	s.logg.Info(logCtx, "seeded admin account")
	return nil
}
