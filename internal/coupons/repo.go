package coupons

import (
	"context"
	"errors"
	"fmt"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db/models"
	"gorm.io/gorm"
)

// ErrUsageExhausted is returned when a coupon has no redemptions left.
var ErrUsageExhausted = errors.New("coupon usage limit reached")

// Repository handles coupon persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to coupon operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new coupon.
func (r *Repository) Create(ctx context.Context, c *models.Coupon) error {
	if c == nil {
		return fmt.Errorf("coupon is required")
	}
	return r.db.WithContext(ctx).Create(c).Error
}

// FindByCode loads a coupon by its normalized code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.db.WithContext(ctx).Where("code = ?", NormalizeCode(code)).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every coupon, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Coupon, error) {
	var out []models.Coupon
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// RedeemWithTx increments the usage counter, refusing once the usage limit is reached.
func (r *Repository) RedeemWithTx(tx *gorm.DB, code string) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	res := tx.Model(&models.Coupon{}).
		Where("code = ? AND (usage_limit IS NULL OR used_count < usage_limit)", NormalizeCode(code)).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUsageExhausted
	}
	return nil
}
