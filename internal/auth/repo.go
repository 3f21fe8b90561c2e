package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
)

// Repository reads and writes admin accounts.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, admin *models.AdminUser) error
	TouchLastLogin(ctx context.Context, admin *models.AdminUser) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an admin repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (r *repository) Create(ctx context.Context, admin *models.AdminUser) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *repository) TouchLastLogin(ctx context.Context, admin *models.AdminUser) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("id = ?", admin.ID).
		Update("last_login_at", admin.LastLoginAt).Error
}
