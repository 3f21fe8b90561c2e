package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

// staleOrderReader finds orders abandoned before payment.
type staleOrderReader interface {
	FindStalePendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

// statusConditionalUpdater matches the orders repository conditional
// update, which is all this job needs to expire an order.
type statusConditionalUpdater interface {
	UpdateStatusIf(ctx context.Context, orderID uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus, updates map[string]any) (bool, error)
}

// OrderTTLJobParams configure the stale order sweeper.
type OrderTTLJobParams struct {
	Logger     *logger.Logger
	Reader     staleOrderReader
	Expirer    statusConditionalUpdater
	MaxAge     time.Duration
	BatchLimit int
}

// NewOrderTTLJob builds the job that expires checkouts whose payment
// never arrived.
func NewOrderTTLJob(params OrderTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("stale order reader required")
	}
	if params.Expirer == nil {
		return nil, fmt.Errorf("order expirer required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = 48 * time.Hour
	}
	limit := params.BatchLimit
	if limit <= 0 {
		limit = 100
	}
	return &orderTTLJob{
		logg:    params.Logger,
		reader:  params.Reader,
		expirer: params.Expirer,
		maxAge:  maxAge,
		limit:   limit,
		now:     time.Now,
	}, nil
}

type orderTTLJob struct {
	logg    *logger.Logger
	reader  staleOrderReader
	expirer statusConditionalUpdater
	maxAge  time.Duration
	limit   int
	now     func() time.Time
}

func (j *orderTTLJob) Name() string { return "order-ttl" }

func (j *orderTTLJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	stale, err := j.reader.FindStalePendingBefore(ctx, cutoff, j.limit)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}

	var errs error
	count := 0
	for _, order := range stale {
		now := j.now().UTC()
		updated, err := j.expirer.UpdateStatusIf(ctx, order.ID,
			[]enums.OrderStatus{enums.OrderStatusPending},
			enums.OrderStatusExpired,
			map[string]any{"expired_at": now})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", order.ID, err))
			continue
		}
		if updated {
			count++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "order expiration loop complete")
	return errs
}
