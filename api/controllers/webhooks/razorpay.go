package webhooks

import (
	"context"
	"net/http"

	"github.com/rahulvermadev/tiffinbox-backend/api/responses"
	"github.com/rahulvermadev/tiffinbox-backend/api/validators"
	ordersvc "github.com/rahulvermadev/tiffinbox-backend/internal/orders"
	"github.com/rahulvermadev/tiffinbox-backend/internal/payments/razorpay"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/metrics"
)

type paymentApplier interface {
	ApplyPaymentResult(ctx context.Context, input ordersvc.ApplyPaymentInput) (*ordersvc.ApplyPaymentResult, error)
}

type razorpaySecretSource interface {
	Secret() string
}

type razorpayConfirmRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required,max=64"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required,max=64"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required,max=128"`
}

// RazorpayConfirm verifies the browser-side payment confirmation the
// Razorpay checkout posts back after a payment. The signature binds the
// order and payment ids to our key secret; a mismatch is rejected before
// anything is looked up.
func RazorpayConfirm(svc paymentApplier, secrets razorpaySecretSource, guard *CallbackGuard, cbm *metrics.CallbackMetrics, logg *logger.Logger) http.HandlerFunc {
	gateway := string(enums.PaymentGatewayRazorpay)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || secrets == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment handler unavailable"))
			return
		}

		var payload razorpayConfirmRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			cbm.IncRejected(gateway, "malformed")
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if !razorpay.VerifySignature(payload.RazorpayOrderID, payload.RazorpayPaymentID, payload.RazorpaySignature, secrets.Secret()) {
			cbm.IncRejected(gateway, "signature")
			if logg != nil {
				logCtx := logg.WithFields(ctx, map[string]any{
					"gateway":          gateway,
					"gateway_order_id": payload.RazorpayOrderID,
				})
				logg.Warn(logCtx, "payment.callback.signature_mismatch")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "signature verification failed"))
			return
		}

		cbm.IncReceived(gateway, ordersvc.PaymentStateCompleted)

		if !guard.FirstDelivery(ctx, gateway, payload.RazorpayPaymentID) {
			cbm.IncRejected(gateway, "duplicate")
			responses.WriteSuccess(w, map[string]any{"duplicate": true})
			return
		}

		result, err := svc.ApplyPaymentResult(ctx, ordersvc.ApplyPaymentInput{
			Gateway:        enums.PaymentGatewayRazorpay,
			GatewayTxnID:   payload.RazorpayPaymentID,
			GatewayOrderID: payload.RazorpayOrderID,
			PaymentState:   ordersvc.PaymentStateCompleted,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"matched": result.Matched,
			"updated": result.Updated,
			"status":  string(result.NewStatus),
		})
	}
}
