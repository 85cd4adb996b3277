package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/repositories"
)

type CouponPostgreSQL struct {
	db *gorm.DB
}

func NewCouponPostgreSQL(db *gorm.DB) repositories.CouponRepository {
	return &CouponPostgreSQL{db: db}
}

func (c *CouponPostgreSQL) Create(ctx context.Context, coupon *models.Coupon) error {
	return c.db.WithContext(ctx).Create(coupon).Error
}

func (c *CouponPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := c.db.WithContext(ctx).First(&coupon, id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (c *CouponPostgreSQL) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := c.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (c *CouponPostgreSQL) Update(ctx context.Context, coupon *models.Coupon) error {
	return c.db.WithContext(ctx).Save(coupon).Error
}

func (c *CouponPostgreSQL) Delete(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Delete(&models.Coupon{}, id).Error
}

func (c *CouponPostgreSQL) List(ctx context.Context, filters repositories.CouponFilters) ([]*models.Coupon, int64, error) {
	var coupons []*models.Coupon
	var total int64

	query := c.db.WithContext(ctx).Model(&models.Coupon{})
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filters.SortBy
	switch sortBy {
	case "name", "code", "end_date", "created_at":
	default:
		sortBy = "created_at"
	}
	order := "desc"
	if filters.SortOrder == "asc" {
		order = "asc"
	}
	query = query.Order(sortBy + " " + order)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&coupons).Error; err != nil {
		return nil, 0, err
	}

	return coupons, total, nil
}

func (c *CouponPostgreSQL) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (c *CouponPostgreSQL) IncrementUsage(ctx context.Context, id uint) (bool, error) {
	// Single guarded update; the cap check and the bump are atomic.
	res := c.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND used_count < max_use_limit", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
