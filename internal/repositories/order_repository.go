package repositories

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/prepkart/prepkart-api/internal/models"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByReference(ctx context.Context, reference string) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uint) error

	GetByStudent(ctx context.Context, studentID string) ([]*models.Order, error)

	// FindWithUnexpiredItems returns orders holding at least one course item
	// whose is_expired flag is still false; the caller filters by expiry
	// date. Already fully-expired orders never match, which is what makes
	// the sweep idempotent.
	FindWithUnexpiredItems(ctx context.Context) ([]*models.Order, error)

	// ReplaceCourseDetails overwrites the whole course_details array in a
	// single update, the sweep's unit of atomicity.
	ReplaceCourseDetails(ctx context.Context, orderID uint, details datatypes.JSON) error

	// FindPDFOrdersOlderThan returns orders created before cutoff whose
	// items are all PDF-type, candidates for the 90-day purge.
	FindPDFOrdersOlderThan(ctx context.Context, studentID string, cutoff time.Time) ([]*models.Order, error)
}
