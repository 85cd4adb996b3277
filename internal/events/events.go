package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventResultSubmitted  EventType = "result.submitted"
	EventOrderItemExpired EventType = "order.item.expired"
	EventCouponRedeemed   EventType = "coupon.redeemed"
)

// DomainEvent is the envelope published to the broker for every
// significant state change in the service.
type DomainEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewDomainEvent(eventType EventType, data interface{}) *DomainEvent {
	return &DomainEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "prepkart-api",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// ResultSubmittedEvent is emitted after a scored attempt is persisted.
type ResultSubmittedEvent struct {
	ResultID   uint    `json:"result_id"`
	StudentID  string  `json:"student_id"`
	ExamCode   string  `json:"exam_code"`
	Attempt    int     `json:"attempt"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}

// OrderItemExpiredEvent is emitted per sweep run for each order whose
// entitlements were revoked.
type OrderItemExpiredEvent struct {
	OrderID      uint     `json:"order_id"`
	StudentID    string   `json:"student_id"`
	ExpiredItems []string `json:"expired_items"`
}

// CouponRedeemedEvent is emitted when a coupon's used count is consumed.
type CouponRedeemedEvent struct {
	CouponID  uint   `json:"coupon_id"`
	Code      string `json:"code"`
	OrderID   uint   `json:"order_id"`
	UsedCount int    `json:"used_count"`
}
