package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rahulvermadev/tiffinbox-backend/api/responses"
	"github.com/rahulvermadev/tiffinbox-backend/api/validators"
	ordersvc "github.com/rahulvermadev/tiffinbox-backend/internal/orders"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

type trackedOrderResponse struct {
	OrderNumber   int64                    `json:"order_number"`
	Status        string                   `json:"status"`
	CustomerName  string                   `json:"customer_name"`
	DeliveryAddr  string                   `json:"delivery_addr"`
	Gateway       string                   `json:"gateway"`
	CouponCode    *string                  `json:"coupon_code,omitempty"`
	SubtotalPaise int64                    `json:"subtotal_paise"`
	DiscountPaise int64                    `json:"discount_paise"`
	TotalPaise    int64                    `json:"total_paise"`
	Items         []trackedOrderLineItem   `json:"items"`
	PaidAt        *time.Time               `json:"paid_at,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

type trackedOrderLineItem struct {
	Name           string  `json:"name"`
	PlanID         *string `json:"plan_id,omitempty"`
	PlanDays       int     `json:"plan_days"`
	Qty            int     `json:"qty"`
	UnitPricePaise int64   `json:"unit_price_paise"`
	LineTotalPaise int64   `json:"line_total_paise"`
}

// OrderTrack lets a customer look up their order with the order number
// and the phone it was placed under. No auth; the phone is the shared
// secret.
func OrderTrack(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		number, ok, err := validators.ParseQueryInt64(r, "number")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number is required"))
			return
		}

		phone := strings.TrimSpace(r.URL.Query().Get("phone"))
		if phone == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "phone is required"))
			return
		}

		order, err := svc.Track(r.Context(), number, phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTrackedOrderResponse(order))
	}
}

func newTrackedOrderResponse(order *models.Order) trackedOrderResponse {
	items := make([]trackedOrderLineItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, trackedOrderLineItem{
			Name:           item.Name,
			PlanID:         item.PlanID,
			PlanDays:       item.PlanDays,
			Qty:            item.Qty,
			UnitPricePaise: item.UnitPricePaise,
			LineTotalPaise: item.LineTotalPaise,
		})
	}
	return trackedOrderResponse{
		OrderNumber:   order.OrderNumber,
		Status:        string(order.Status),
		CustomerName:  order.CustomerName,
		DeliveryAddr:  order.DeliveryAddr,
		Gateway:       string(order.Gateway),
		CouponCode:    order.CouponCode,
		SubtotalPaise: order.SubtotalPaise,
		DiscountPaise: order.DiscountPaise,
		TotalPaise:    order.TotalPaise,
		Items:         items,
		PaidAt:        order.PaidAt,
		CreatedAt:     order.CreatedAt,
	}
}
