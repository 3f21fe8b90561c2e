package razorpay

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rahulvermadev/tiffinbox-backend/internal/payments"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/config"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
)

const requestTimeout = 15 * time.Second

// orderRequest is the Razorpay Orders API create payload.
type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// orderResponse is the subset of the Orders API response we consume.
type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client talks to the Razorpay REST API.
type Client struct {
	http   *resty.Client
	keyID  string
	secret string
}

// NewClient builds a Razorpay API client from configuration.
func NewClient(cfg config.RazorpayConfig) (*Client, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("razorpay key id and secret required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("razorpay base url required")
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(requestTimeout).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetHeader("Content-Type", "application/json")

	return &Client{http: http, keyID: cfg.KeyID, secret: cfg.KeySecret}, nil
}

// KeyID returns the public key id the browser SDK needs.
func (c *Client) KeyID() string {
	return c.keyID
}

// Secret returns the signing secret for signature verification.
func (c *Client) Secret() string {
	return c.secret
}

// Name identifies this gateway in the registry.
func (c *Client) Name() enums.PaymentGateway {
	return enums.PaymentGatewayRazorpay
}

// CreatePayment opens a Razorpay order for the given amount. The returned
// gateway order id is handed to the browser checkout SDK.
func (c *Client) CreatePayment(ctx context.Context, input payments.CreatePaymentInput) (*payments.CreatePaymentResult, error) {
	if input.AmountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	var (
		created orderResponse
		failure apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(orderRequest{
			Amount:   input.AmountPaise,
			Currency: "INR",
			Receipt:  input.MerchantTxnID,
			Notes:    input.Notes,
		}).
		SetResult(&created).
		SetError(&failure).
		Post("/v1/orders")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpay order creation failed")
	}
	if resp.IsError() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("razorpay order creation rejected: %s %s", failure.Error.Code, failure.Error.Description))
	}
	if created.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay order creation returned no order id")
	}

	return &payments.CreatePaymentResult{
		Gateway:        enums.PaymentGatewayRazorpay,
		GatewayOrderID: created.ID,
	}, nil
}
