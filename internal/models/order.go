package models

import (
	"time"

	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

// Order is a purchase of one or more course items. CourseDetails is the
// JSONB array of CourseItem; the expiry sweep rewrites that array whole,
// one update per order, so a single order is the unit of atomicity.
type Order struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Reference string `json:"reference" gorm:"not null;size:64;uniqueIndex"`
	StudentID string `json:"student_id" gorm:"not null;size:100;index" validate:"required"`

	Amount   float64     `json:"amount" gorm:"not null" validate:"min=0"`
	Currency string      `json:"currency" gorm:"size:3;default:INR" validate:"omitempty,oneof=INR USD"`
	Status   OrderStatus `json:"status" gorm:"default:pending;index"`

	// Gateway handles from the payment collaborator; opaque to this service.
	GatewayToken       string `json:"gateway_token,omitempty" gorm:"size:200"`
	GatewayRedirectURL string `json:"gateway_redirect_url,omitempty" gorm:"size:500"`

	CouponCode string `json:"coupon_code,omitempty" gorm:"size:50"`

	CourseDetails datatypes.JSON `json:"course_details" gorm:"type:jsonb"` // []CourseItem

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// CourseItem is one purchased entitlement inside Order.CourseDetails.
// MainPdfURL is the download link; clearing it revokes access.
type CourseItem struct {
	Name       string    `json:"name"`
	ItemType   string    `json:"item_type"` // "pdf" or "engine"
	MainPdfURL string    `json:"main_pdf_url"`
	ExpiryDate time.Time `json:"expiry_date"`
	IsExpired  bool      `json:"is_expired"`
}

// ExpirySummary reports one sweep run.
type ExpirySummary struct {
	OrdersUpdated int       `json:"orders_updated"`
	ItemsExpired  int       `json:"items_expired"`
	FailedOrders  []uint    `json:"failed_orders,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
