package phonepe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rahulvermadev/tiffinbox-backend/internal/payments"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/config"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
)

const requestTimeout = 15 * time.Second

// payRequest is the payment-creation payload PhonePe expects, carried
// base64-encoded inside {"request": ...}.
type payRequest struct {
	MerchantID            string        `json:"merchantId"`
	MerchantTransactionID string        `json:"merchantTransactionId"`
	Amount                int64         `json:"amount"`
	RedirectURL           string        `json:"redirectUrl"`
	RedirectMode          string        `json:"redirectMode"`
	CallbackURL           string        `json:"callbackUrl"`
	MobileNumber          string        `json:"mobileNumber,omitempty"`
	PaymentInstrument     payInstrument `json:"paymentInstrument"`
}

type payInstrument struct {
	Type string `json:"type"`
}

type payEnvelope struct {
	Request string `json:"request"`
}

type payResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		MerchantTransactionID string `json:"merchantTransactionId"`
		InstrumentResponse    struct {
			RedirectInfo struct {
				URL string `json:"url"`
			} `json:"redirectInfo"`
		} `json:"instrumentResponse"`
	} `json:"data"`
}

// StatusResult is the normalized answer from a payment status check.
type StatusResult struct {
	State                 string
	ResponseCode          string
	TransactionID         string
	MerchantTransactionID string
	AmountPaise           int64
}

type statusResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		MerchantID            string `json:"merchantId"`
		MerchantTransactionID string `json:"merchantTransactionId"`
		TransactionID         string `json:"transactionId"`
		Amount                int64  `json:"amount"`
		State                 string `json:"state"`
		ResponseCode          string `json:"responseCode"`
	} `json:"data"`
}

// Client talks to the PhonePe Pay Page API.
type Client struct {
	http        *resty.Client
	merchantID  string
	saltKey     string
	saltIndex   string
	redirectURL string
	callbackURL string
}

// NewClient builds a PhonePe API client from configuration.
func NewClient(cfg config.PhonePeConfig) (*Client, error) {
	if cfg.MerchantID == "" || cfg.SaltKey == "" {
		return nil, fmt.Errorf("phonepe merchant id and salt key required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("phonepe base url required")
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(requestTimeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:        http,
		merchantID:  cfg.MerchantID,
		saltKey:     cfg.SaltKey,
		saltIndex:   cfg.SaltIndex,
		redirectURL: cfg.RedirectURL,
		callbackURL: cfg.CallbackURL,
	}, nil
}

// MerchantID returns the configured merchant id.
func (c *Client) MerchantID() string {
	return c.merchantID
}

// SaltKey returns the checksum salt key.
func (c *Client) SaltKey() string {
	return c.saltKey
}

// SaltIndex returns the checksum salt index.
func (c *Client) SaltIndex() string {
	return c.saltIndex
}

// Name identifies this gateway in the registry.
func (c *Client) Name() enums.PaymentGateway {
	return enums.PaymentGatewayPhonePe
}

// CreatePayment opens a PhonePe pay-page transaction. The caller
// redirects the browser to the returned URL.
func (c *Client) CreatePayment(ctx context.Context, input payments.CreatePaymentInput) (*payments.CreatePaymentResult, error) {
	if input.AmountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if input.MerchantTxnID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant transaction id required")
	}

	body, err := json.Marshal(payRequest{
		MerchantID:            c.merchantID,
		MerchantTransactionID: input.MerchantTxnID,
		Amount:                input.AmountPaise,
		RedirectURL:           c.redirectURL,
		RedirectMode:          "REDIRECT",
		CallbackURL:           c.callbackURL,
		MobileNumber:          input.CustomerPhone,
		PaymentInstrument:     payInstrument{Type: "PAY_PAGE"},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to encode pay request")
	}
	encoded := base64.StdEncoding.EncodeToString(body)

	var result payResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-VERIFY", Checksum(encoded, PayPath, c.saltKey, c.saltIndex)).
		SetBody(payEnvelope{Request: encoded}).
		SetResult(&result).
		SetError(&result).
		Post(PayPath)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "phonepe pay request failed")
	}
	if resp.IsError() || !result.Success {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("phonepe pay request rejected: %s %s", result.Code, result.Message))
	}
	redirect := result.Data.InstrumentResponse.RedirectInfo.URL
	if redirect == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "phonepe pay response missing redirect url")
	}

	return &payments.CreatePaymentResult{
		Gateway:     enums.PaymentGatewayPhonePe,
		RedirectURL: redirect,
	}, nil
}

// Status fetches the current state of a transaction.
func (c *Client) Status(ctx context.Context, merchantTxnID string) (*StatusResult, error) {
	if merchantTxnID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant transaction id required")
	}

	var result statusResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-VERIFY", StatusChecksum(c.merchantID, merchantTxnID, c.saltKey, c.saltIndex)).
		SetHeader("X-MERCHANT-ID", c.merchantID).
		SetResult(&result).
		SetError(&result).
		Get(StatusPathPrefix + c.merchantID + "/" + merchantTxnID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "phonepe status request failed")
	}
	if resp.IsError() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("phonepe status request rejected: %s %s", result.Code, result.Message))
	}

	return &StatusResult{
		State:                 result.Data.State,
		ResponseCode:          result.Data.ResponseCode,
		TransactionID:         result.Data.TransactionID,
		MerchantTransactionID: result.Data.MerchantTransactionID,
		AmountPaise:           result.Data.Amount,
	}, nil
}
