package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/rahulvermadev/tiffinbox-backend/internal/orders"
	"github.com/rahulvermadev/tiffinbox-backend/internal/payments/phonepe"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

// statusChecker is the slice of the PhonePe client the reconciler needs.
type statusChecker interface {
	Status(ctx context.Context, merchantTxnID string) (*phonepe.StatusResult, error)
}

// paymentApplier applies a settled gateway state to an order.
type paymentApplier interface {
	ApplyPaymentResult(ctx context.Context, input orders.ApplyPaymentInput) (*orders.ApplyPaymentResult, error)
}

// pendingOrderReader finds orders whose payment answer never arrived.
type pendingOrderReader interface {
	FindPaymentPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

// PaymentReconcileJobParams configure the payment reconciliation job.
type PaymentReconcileJobParams struct {
	Logger        *logger.Logger
	PendingReader pendingOrderReader
	Status        statusChecker
	Applier       paymentApplier
	Lookback      time.Duration
	BatchLimit    int
}

// NewPaymentReconcileJob builds the job that polls PhonePe for orders
// stuck awaiting a payment callback. Callbacks are fire-and-forget; when
// one is lost, this job is what eventually settles the order.
func NewPaymentReconcileJob(params PaymentReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.PendingReader == nil {
		return nil, fmt.Errorf("pending orders reader required")
	}
	if params.Status == nil {
		return nil, fmt.Errorf("status checker required")
	}
	if params.Applier == nil {
		return nil, fmt.Errorf("payment applier required")
	}
	lookback := params.Lookback
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	limit := params.BatchLimit
	if limit <= 0 {
		limit = 50
	}
	return &paymentReconcileJob{
		logg:          params.Logger,
		pendingReader: params.PendingReader,
		status:        params.Status,
		applier:       params.Applier,
		lookback:      lookback,
		limit:         limit,
		now:           time.Now,
	}, nil
}

type paymentReconcileJob struct {
	logg          *logger.Logger
	pendingReader pendingOrderReader
	status        statusChecker
	applier       paymentApplier
	lookback      time.Duration
	limit         int
	now           func() time.Time
}

func (j *paymentReconcileJob) Name() string { return "payment-reconcile" }

func (j *paymentReconcileJob) Run(ctx context.Context) error {
	// Give the gateway a few minutes to deliver the callback before
	// polling, but do not chase orders older than the lookback window.
	newest := j.now().UTC().Add(-5 * time.Minute)
	oldest := j.now().UTC().Add(-j.lookback)

	pending, err := j.pendingReader.FindPaymentPendingBefore(ctx, newest, j.limit)
	if err != nil {
		return fmt.Errorf("query payment-pending orders: %w", err)
	}

	var errs error
	count := 0
	for _, order := range pending {
		if order.CreatedAt.Before(oldest) {
			continue
		}
		if order.Gateway != enums.PaymentGatewayPhonePe {
			continue
		}
		if order.Attempt == nil || order.Attempt.MerchantTxnID == "" {
			continue
		}
		if err := j.reconcileOrder(ctx, order); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		count++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "payment reconcile loop complete")
	return errs
}

func (j *paymentReconcileJob) reconcileOrder(ctx context.Context, order models.Order) error {
	status, err := j.status.Status(ctx, order.Attempt.MerchantTxnID)
	if err != nil {
		return fmt.Errorf("status check for %s: %w", order.Attempt.MerchantTxnID, err)
	}
	// A transaction still pending at the gateway has nothing to apply.
	if status.State == orders.PaymentStatePending || status.State == "" {
		return nil
	}

	_, err = j.applier.ApplyPaymentResult(ctx, orders.ApplyPaymentInput{
		Gateway:       enums.PaymentGatewayPhonePe,
		GatewayTxnID:  status.TransactionID,
		MerchantTxnID: order.Attempt.MerchantTxnID,
		PaymentState:  status.State,
		AmountPaise:   status.AmountPaise,
	})
	if err != nil {
		return fmt.Errorf("apply payment result for %s: %w", order.Attempt.MerchantTxnID, err)
	}
	return nil
}
