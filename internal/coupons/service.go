package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

// sessionStore holds the single coupon code applied to a cart session.
type sessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CouponSessionKey(sessionID string) string
}

// Service manages the per-session applied coupon. A session holds at most
// one coupon at a time; applying a second valid code replaces the first,
// while an invalid attempt leaves the current one untouched.
type Service interface {
	// Apply validates the code and stores it against the session.
	// Returns true when the coupon was applied.
	Apply(ctx context.Context, sessionID, code string) (bool, error)
	// Applied returns the coupon currently held by the session, or nil.
	Applied(ctx context.Context, sessionID string) (*models.Coupon, error)
	// Remove clears the session's coupon. Removing when none is applied
	// is a no-op.
	Remove(ctx context.Context, sessionID string) error
}

// Discounted applies a coupon to a price, never going below zero.
func Discounted(price decimal.Decimal, coupon *models.Coupon) decimal.Decimal {
	if coupon == nil {
		return price
	}
	var out decimal.Decimal
	switch coupon.Type {
	case enums.CouponTypePercentage:
		hundred := decimal.NewFromInt(100)
		out = price.Sub(price.Mul(coupon.Value).Div(hundred))
	case enums.CouponTypeFixed:
		out = price.Sub(coupon.Value)
	default:
		return price
	}
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

type service struct {
	logg     *logger.Logger
	repo     Repository
	sessions sessionStore
	ttl      time.Duration
}

// ServiceParams wire the coupon service dependencies.
type ServiceParams struct {
	Logger   *logger.Logger
	Repo     Repository
	Sessions sessionStore
	TTL      time.Duration
}

// NewService validates dependencies and builds the coupon service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("coupon session store required")
	}
	if params.TTL <= 0 {
		params.TTL = 24 * time.Hour
	}
	return &service{
		logg:     params.Logger,
		repo:     params.Repo,
		sessions: params.Sessions,
		ttl:      params.TTL,
	}, nil
}

func (s *service) Apply(ctx context.Context, sessionID, code string) (bool, error) {
	if sessionID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if code == "" {
		return false, nil
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to look up coupon")
	}
	if coupon == nil || !coupon.IsValid(time.Now().UTC()) {
		logCtx := s.logg.WithFields(ctx, map[string]any{"code": code})
		s.logg.Info(logCtx, "coupon apply rejected")
		return false, nil
	}

	key := s.sessions.CouponSessionKey(sessionID)
	if err := s.sessions.Set(ctx, key, coupon.Code, s.ttl); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to store applied coupon")
	}
	return true, nil
}

func (s *service) Applied(ctx context.Context, sessionID string) (*models.Coupon, error) {
	if sessionID == "" {
		return nil, nil
	}
	key := s.sessions.CouponSessionKey(sessionID)
	code, err := s.sessions.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to read applied coupon")
	}
	if code == "" {
		return nil, nil
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to look up coupon")
	}
	// A coupon can expire or be deactivated after it was applied. Drop it
	// from the session rather than honoring a stale discount.
	if coupon == nil || !coupon.IsValid(time.Now().UTC()) {
		if delErr := s.sessions.Del(ctx, key); delErr != nil {
			s.logg.Warn(ctx, "failed to clear stale coupon from session")
		}
		return nil, nil
	}
	return coupon, nil
}

func (s *service) Remove(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	key := s.sessions.CouponSessionKey(sessionID)
	if err := s.sessions.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to remove applied coupon")
	}
	return nil
}
