package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/pagination"
)

// ListInput filters the admin order listing.
type ListInput struct {
	Status     *enums.OrderStatus
	Pagination pagination.Params
}

// ListResult is a page of orders plus the next cursor, if any.
type ListResult struct {
	Orders     []models.Order
	NextCursor string
}

// Repository reads and writes orders and their payment attempts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber int64, phone string) (*models.Order, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	NextOrderNumber(ctx context.Context) (int64, error)

	// UpdateStatusIf moves the order to the target status only while it is
	// still in one of the expected states. Returns false when another
	// writer got there first.
	UpdateStatusIf(ctx context.Context, orderID uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus, updates map[string]any) (bool, error)
	FindPaymentPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	FindStalePendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)

	CreateAttempt(ctx context.Context, attempt *models.PaymentAttempt) error
	FindAttemptByGatewayTxnID(ctx context.Context, gatewayTxnID string) (*models.PaymentAttempt, error)
	FindAttemptByMerchantTxnID(ctx context.Context, merchantTxnID string) (*models.PaymentAttempt, error)
	FindAttemptByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentAttempt, error)
	UpdateAttempt(ctx context.Context, attemptID uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Attempt").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByOrderNumber(ctx context.Context, orderNumber int64, phone string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ? AND customer_phone = ?", orderNumber, phone).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, input ListInput) (*ListResult, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")
	if input.Status != nil {
		query = query.Where("status = ?", *input.Status)
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	var orders []models.Order
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(input.Pagination.Limit)).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	result := &ListResult{Orders: orders}
	if len(orders) > limit {
		last := orders[limit-1]
		result.Orders = orders[:limit]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

func (r *repository) NextOrderNumber(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Raw("SELECT nextval('order_number_seq')").Scan(&next).Error
	return next, err
}

func (r *repository) UpdateStatusIf(ctx context.Context, orderID uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID)
	if len(from) > 0 {
		query = query.Where("status IN ?", from)
	}
	res := query.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindPaymentPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Attempt").
		Where("status IN ?", []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusPaymentPending}).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) FindStalePendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.OrderStatusPending).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) CreateAttempt(ctx context.Context, attempt *models.PaymentAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *repository) FindAttemptByGatewayTxnID(ctx context.Context, gatewayTxnID string) (*models.PaymentAttempt, error) {
	return r.findAttempt(ctx, "gateway_payment_id = ?", gatewayTxnID)
}

func (r *repository) FindAttemptByMerchantTxnID(ctx context.Context, merchantTxnID string) (*models.PaymentAttempt, error) {
	return r.findAttempt(ctx, "merchant_txn_id = ?", merchantTxnID)
}

func (r *repository) FindAttemptByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentAttempt, error) {
	return r.findAttempt(ctx, "gateway_order_id = ?", gatewayOrderID)
}

func (r *repository) findAttempt(ctx context.Context, condition string, value string) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	err := r.db.WithContext(ctx).Where(condition, value).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *repository) UpdateAttempt(ctx context.Context, attemptID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentAttempt{}).
		Where("id = ?", attemptID).
		Updates(updates).Error
}
