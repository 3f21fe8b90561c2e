package pricing

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
)

// ErrPlanNotFound signals an unknown or inactive plan id. Callers choose
// between rejecting the request and falling back to OneTimePlan.
var ErrPlanNotFound = errors.New("subscription plan not found")

// Repository reads subscription plan reference data.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id string) (*models.SubscriptionPlan, error)
	ListActive(ctx context.Context) ([]models.SubscriptionPlan, error)
	List(ctx context.Context) ([]models.SubscriptionPlan, error)
	Upsert(ctx context.Context, plan *models.SubscriptionPlan) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a plan repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("duration_days ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) List(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.WithContext(ctx).Order("duration_days ASC").Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) Upsert(ctx context.Context, plan *models.SubscriptionPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}
