package postgres

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/repositories"
)

type OrderPostgreSQL struct {
	db *gorm.DB
}

func NewOrderPostgreSQL(db *gorm.DB) repositories.OrderRepository {
	return &OrderPostgreSQL{db: db}
}

func (o *OrderPostgreSQL) Create(ctx context.Context, order *models.Order) error {
	return o.db.WithContext(ctx).Create(order).Error
}

func (o *OrderPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := o.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (o *OrderPostgreSQL) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	if err := o.db.WithContext(ctx).Where("reference = ?", reference).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (o *OrderPostgreSQL) Update(ctx context.Context, order *models.Order) error {
	return o.db.WithContext(ctx).Save(order).Error
}

func (o *OrderPostgreSQL) Delete(ctx context.Context, id uint) error {
	return o.db.WithContext(ctx).Delete(&models.Order{}, id).Error
}

func (o *OrderPostgreSQL) GetByStudent(ctx context.Context, studentID string) ([]*models.Order, error) {
	var orders []*models.Order
	if err := o.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (o *OrderPostgreSQL) FindWithUnexpiredItems(ctx context.Context) ([]*models.Order, error) {
	var orders []*models.Order
	// JSONB containment: matches orders holding at least one item whose
	// is_expired flag is still false.
	if err := o.db.WithContext(ctx).
		Where(`course_details @> '[{"is_expired": false}]'`).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (o *OrderPostgreSQL) ReplaceCourseDetails(ctx context.Context, orderID uint, details datatypes.JSON) error {
	res := o.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("course_details", details)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (o *OrderPostgreSQL) FindPDFOrdersOlderThan(ctx context.Context, studentID string, cutoff time.Time) ([]*models.Order, error) {
	var orders []*models.Order
	// Orders where every item is PDF-type: no item of another type exists.
	if err := o.db.WithContext(ctx).
		Where("student_id = ? AND created_at < ?", studentID, cutoff).
		Where(`NOT (course_details @> '[{"item_type": "engine"}]')`).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
