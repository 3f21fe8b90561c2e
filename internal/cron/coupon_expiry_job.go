package cron

import (
	"context"
	"fmt"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

// expiredCouponDeactivator flips active off for coupons past expiry.
type expiredCouponDeactivator interface {
	DeactivateExpired(ctx context.Context) (int64, error)
}

// CouponExpiryJobParams configure the coupon expiry job.
type CouponExpiryJobParams struct {
	Logger  *logger.Logger
	Coupons expiredCouponDeactivator
}

// NewCouponExpiryJob builds the job that retires expired coupons so the
// apply path never has to reason about stale rows.
func NewCouponExpiryJob(params CouponExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon deactivator required")
	}
	return &couponExpiryJob{logg: params.Logger, coupons: params.Coupons}, nil
}

type couponExpiryJob struct {
	logg    *logger.Logger
	coupons expiredCouponDeactivator
}

func (j *couponExpiryJob) Name() string { return "coupon-expiry" }

func (j *couponExpiryJob) Run(ctx context.Context) error {
	count, err := j.coupons.DeactivateExpired(ctx)
	if err != nil {
		return fmt.Errorf("deactivate expired coupons: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "coupon expiry loop complete")
	return nil
}
