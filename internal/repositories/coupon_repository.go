package repositories

import (
	"context"

	"github.com/prepkart/prepkart-api/internal/models"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByID(ctx context.Context, id uint) (*models.Coupon, error)

	// GetByCode expects an already-normalized (trimmed, uppercased) code.
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)

	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters CouponFilters) ([]*models.Coupon, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// IncrementUsage bumps used_count by one, guarded by the usage cap in
	// the same statement; returns false when the cap was already reached.
	IncrementUsage(ctx context.Context, id uint) (bool, error)
}
