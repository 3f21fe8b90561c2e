package webhooks

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rahulvermadev/tiffinbox-backend/api/responses"
	ordersvc "github.com/rahulvermadev/tiffinbox-backend/internal/orders"
	"github.com/rahulvermadev/tiffinbox-backend/internal/payments/phonepe"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/metrics"
)

type phonePeCredentials interface {
	MerchantID() string
	SaltKey() string
	SaltIndex() string
}

type phonePeCallbackBody struct {
	Response string `json:"response"`
}

type phonePeCallbackResponse struct {
	Success               bool   `json:"success"`
	Status                string `json:"status"`
	Message               string `json:"message"`
	TransactionID         string `json:"transactionId,omitempty"`
	MerchantTransactionID string `json:"merchantTransactionId,omitempty"`
}

// PhonePeCallback handles the server-to-server payment callback. The
// X-VERIFY checksum is checked against the raw base64 payload before it
// is decoded; a mismatch is a hard 400 so the gateway retries against a
// healthy deployment rather than poisoning order state.
func PhonePeCallback(svc paymentApplier, creds phonePeCredentials, guard *CallbackGuard, cbm *metrics.CallbackMetrics, logg *logger.Logger) http.HandlerFunc {
	gateway := string(enums.PaymentGatewayPhonePe)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || creds == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment handler unavailable"))
			return
		}

		var body phonePeCallbackBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Response) == "" {
			cbm.IncRejected(gateway, "malformed")
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "callback body must carry a response payload"))
			return
		}

		xVerify := strings.TrimSpace(r.Header.Get("X-VERIFY"))
		if !phonepe.VerifyCallback(body.Response, xVerify, creds.SaltKey(), creds.SaltIndex()) {
			cbm.IncRejected(gateway, "checksum")
			if logg != nil {
				logg.Warn(logg.WithGateway(ctx, gateway), "payment.callback.checksum_mismatch")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "checksum verification failed"))
			return
		}

		data, err := phonepe.DecodeCallback(body.Response, creds.MerchantID())
		if err != nil {
			cbm.IncRejected(gateway, "merchant")
			responses.WriteError(ctx, logg, w, err)
			return
		}

		cbm.IncReceived(gateway, data.State)

		if !guard.FirstDelivery(ctx, gateway, data.TransactionID) {
			cbm.IncRejected(gateway, "duplicate")
			responses.WriteSuccess(w, phonePeCallbackResponse{
				Success:               true,
				Status:                data.State,
				Message:               "duplicate callback ignored",
				TransactionID:         data.TransactionID,
				MerchantTransactionID: data.MerchantTransactionID,
			})
			return
		}

		result, err := svc.ApplyPaymentResult(ctx, ordersvc.ApplyPaymentInput{
			Gateway:       enums.PaymentGatewayPhonePe,
			GatewayTxnID:  data.TransactionID,
			MerchantTxnID: data.MerchantTransactionID,
			PaymentState:  data.State,
			AmountPaise:   data.Amount,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		// Unmatched callbacks still answer 200; the gateway treats any
		// other status as a delivery failure and keeps retrying.
		message := "callback processed"
		if !result.Matched {
			message = "transaction not recognized"
		}
		responses.WriteSuccess(w, phonePeCallbackResponse{
			Success:               true,
			Status:                data.State,
			Message:               message,
			TransactionID:         data.TransactionID,
			MerchantTransactionID: data.MerchantTransactionID,
		})
	}
}
