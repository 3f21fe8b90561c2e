package phonepe

import (
	"encoding/base64"
	"encoding/json"

	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
)

// CallbackData is the decoded body of a payment callback. The gateway
// reports amounts in paise.
type CallbackData struct {
	MerchantID            string `json:"merchantId"`
	MerchantTransactionID string `json:"merchantTransactionId"`
	TransactionID         string `json:"transactionId"`
	Amount                int64  `json:"amount"`
	State                 string `json:"state"`
	ResponseCode          string `json:"responseCode"`
}

type callbackEnvelope struct {
	Success bool         `json:"success"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Data    CallbackData `json:"data"`
}

// DecodeCallback decodes the base64 callback payload and checks the
// embedded merchant id before any field is trusted. Checksum
// verification must already have passed.
func DecodeCallback(base64Payload, merchantID string) (*CallbackData, error) {
	raw, err := base64.StdEncoding.DecodeString(base64Payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "callback payload is not valid base64")
	}

	var envelope callbackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "callback payload is not valid json")
	}
	if envelope.Data.MerchantID != merchantID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "callback merchant id mismatch")
	}
	return &envelope.Data, nil
}
