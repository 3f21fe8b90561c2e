package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ApplyPaymentInput is a verified gateway payment result. Callers must
// have checked the signature or checksum before handing it over.
type ApplyPaymentInput struct {
	Gateway        enums.PaymentGateway
	GatewayTxnID   string
	GatewayOrderID string
	MerchantTxnID  string
	PaymentState   string
	AmountPaise    int64
}

// ApplyPaymentResult reports what the transition did.
type ApplyPaymentResult struct {
	Matched   bool
	Updated   bool
	OrderID   uuid.UUID
	NewStatus enums.OrderStatus
}

// Service owns order reads and payment-driven status transitions.
type Service interface {
	// ApplyPaymentResult moves an order according to the gateway payment
	// state. An unmatched transaction id is a logged no-op, never an
	// error: the gateway must not see a failure and retry forever.
	ApplyPaymentResult(ctx context.Context, input ApplyPaymentInput) (*ApplyPaymentResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Track(ctx context.Context, orderNumber int64, phone string) (*models.Order, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	// SetStatus is the admin fulfilment transition (confirmed, out for
	// delivery, delivered, cancelled).
	SetStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
}

type service struct {
	logg *logger.Logger
	tx   txRunner
	repo Repository
}

// ServiceParams wire the orders service dependencies.
type ServiceParams struct {
	Logger *logger.Logger
	DB     txRunner
	Repo   Repository
}

// NewService validates dependencies and builds the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{
		logg: params.Logger,
		tx:   params.DB,
		repo: params.Repo,
	}, nil
}

func (s *service) ApplyPaymentResult(ctx context.Context, input ApplyPaymentInput) (*ApplyPaymentResult, error) {
	attempt, err := s.lookupAttempt(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to look up payment attempt")
	}
	if attempt == nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"gateway":         input.Gateway.String(),
			"gateway_txn_id":  input.GatewayTxnID,
			"merchant_txn_id": input.MerchantTxnID,
		})
		s.logg.Warn(logCtx, "payment callback for unknown transaction, ignoring")
		return &ApplyPaymentResult{Matched: false}, nil
	}

	newStatus := StatusForPaymentState(input.PaymentState)
	result := &ApplyPaymentResult{Matched: true, OrderID: attempt.OrderID, NewStatus: newStatus}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		attemptUpdates := map[string]any{
			"status":             AttemptStatusForPaymentState(input.PaymentState),
			"last_payment_state": input.PaymentState,
		}
		if input.GatewayTxnID != "" {
			attemptUpdates["gateway_payment_id"] = input.GatewayTxnID
		}
		if err := txRepo.UpdateAttempt(ctx, attempt.ID, attemptUpdates); err != nil {
			return err
		}

		orderUpdates := map[string]any{}
		if newStatus == enums.OrderStatusPaidPending {
			orderUpdates["paid_at"] = time.Now().UTC()
		}
		// Only unsettled orders move. A duplicate callback arriving after
		// the first one settled the order is a clean no-op.
		updated, err := txRepo.UpdateStatusIf(ctx, attempt.OrderID,
			[]enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusPaymentPending},
			newStatus, orderUpdates)
		if err != nil {
			return err
		}
		result.Updated = updated
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to apply payment result")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":        attempt.OrderID.String(),
		"gateway":         input.Gateway.String(),
		"payment_state":   input.PaymentState,
		"order_status":    newStatus.String(),
		"status_updated":  result.Updated,
		"merchant_txn_id": attempt.MerchantTxnID,
	})
	s.logg.Info(logCtx, "payment result applied")
	return result, nil
}

// lookupAttempt resolves the attempt by the gateway's own transaction id
// first, then the gateway order id, then falls back to our merchant
// transaction id.
func (s *service) lookupAttempt(ctx context.Context, input ApplyPaymentInput) (*models.PaymentAttempt, error) {
	if input.GatewayTxnID != "" {
		attempt, err := s.repo.FindAttemptByGatewayTxnID(ctx, input.GatewayTxnID)
		if err != nil {
			return nil, err
		}
		if attempt != nil {
			return attempt, nil
		}
	}
	if input.GatewayOrderID != "" {
		attempt, err := s.repo.FindAttemptByGatewayOrderID(ctx, input.GatewayOrderID)
		if err != nil {
			return nil, err
		}
		if attempt != nil {
			return attempt, nil
		}
	}
	if input.MerchantTxnID == "" {
		return nil, nil
	}
	return s.repo.FindAttemptByMerchantTxnID(ctx, input.MerchantTxnID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) Track(ctx context.Context, orderNumber int64, phone string) (*models.Order, error) {
	if orderNumber <= 0 || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number and phone are required")
	}
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber, phone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	result, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list orders")
	}
	return result, nil
}

// fulfilmentTransitions are the admin-driven moves. Payment-driven
// statuses are reached only through ApplyPaymentResult.
var fulfilmentTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusConfirmed:      {enums.OrderStatusPaidPending},
	enums.OrderStatusOutForDelivery: {enums.OrderStatusConfirmed},
	enums.OrderStatusDelivered:      {enums.OrderStatusOutForDelivery},
	enums.OrderStatusCancelled: {
		enums.OrderStatusPending,
		enums.OrderStatusPaymentPending,
		enums.OrderStatusPaidPending,
		enums.OrderStatusConfirmed,
	},
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	from, ok := fulfilmentTransitions[status]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("status %q cannot be set directly", status))
	}

	updated, err := s.repo.UpdateStatusIf(ctx, id, from, status, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update order status")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeConflict, "order is not in a state that allows this transition")
	}
	return nil
}
