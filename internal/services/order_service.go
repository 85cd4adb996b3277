package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/prepkart/prepkart-api/internal/events"
	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/repositories"
	"github.com/prepkart/prepkart-api/internal/utils"
	"github.com/prepkart/prepkart-api/internal/validator"
)

// PDF-only orders older than this are purged when the student next loads
// their order history.
const pdfOrderRetention = 90 * 24 * time.Hour

type CheckoutRequest struct {
	StudentID string              `json:"student_id" validate:"required"`
	Currency  string              `json:"currency" validate:"omitempty,oneof=INR USD"`
	Items     []models.CourseItem `json:"items" validate:"required,min=1"`
	Amount    float64             `json:"amount" validate:"required,gt=0"`
	Coupon    string              `json:"coupon"`
	Customer  CustomerInfo        `json:"customer" validate:"required"`
}

type OrderService interface {
	Checkout(ctx context.Context, req *CheckoutRequest) (*models.Order, error)
	GetByID(ctx context.Context, id uint) (*models.Order, error)

	// ListByStudent returns the student's orders, opportunistically purging
	// PDF-only orders older than the retention window first.
	ListByStudent(ctx context.Context, studentID string) ([]*models.Order, error)

	// ExpireOverdueItems is the sweep: it revokes entitlements whose expiry
	// has passed, one array rewrite per order, isolating per-order failures.
	ExpireOverdueItems(ctx context.Context) (*models.ExpirySummary, error)
}

type orderService struct {
	repo      repositories.Repository
	coupons   CouponService
	payments  PaymentService
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validator.Validator

	// Injected for tests; defaults to time.Now.
	now func() time.Time
}

func NewOrderService(
	repo repositories.Repository,
	coupons CouponService,
	payments PaymentService,
	publisher events.EventPublisher,
	logger utils.Logger,
	v *validator.Validator,
) OrderService {
	return &orderService{
		repo:      repo,
		coupons:   coupons,
		payments:  payments,
		publisher: publisher,
		logger:    logger,
		validator: v,
		now:       time.Now,
	}
}

func (s *orderService) Checkout(ctx context.Context, req *CheckoutRequest) (*models.Order, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	amount := req.Amount
	var coupon *models.Coupon
	if req.Coupon != "" {
		var err error
		coupon, err = s.coupons.Validate(ctx, req.Coupon)
		if err != nil {
			return nil, err
		}
		amount = applyDiscount(amount, currency, coupon)
	}

	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order items: %w", err)
	}

	order := &models.Order{
		Reference:     "ORD-" + uuid.NewString(),
		StudentID:     req.StudentID,
		Amount:        amount,
		Currency:      currency,
		Status:        models.OrderPending,
		CourseDetails: datatypes.JSON(itemsJSON),
	}
	if coupon != nil {
		order.CouponCode = coupon.Code
	}

	token, redirectURL, err := s.payments.CreateTransaction(order, req.Customer)
	if err != nil {
		return nil, err
	}
	order.GatewayToken = token
	order.GatewayRedirectURL = redirectURL

	if err := s.repo.Order().Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if coupon != nil {
		if err := s.coupons.Redeem(ctx, coupon.ID, order.ID); err != nil {
			s.logger.Warn("Coupon redemption failed after order creation",
				"order_id", order.ID, "coupon_code", coupon.Code, "error", err)
		}
	}

	s.logger.Info("Order created",
		"order_id", order.ID,
		"reference", order.Reference,
		"student_id", order.StudentID,
		"amount", order.Amount)

	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.repo.Order().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (s *orderService) ListByStudent(ctx context.Context, studentID string) ([]*models.Order, error) {
	s.purgeOldPDFOrders(ctx, studentID)

	orders, err := s.repo.Order().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// purgeOldPDFOrders is best-effort: a failure never blocks the listing.
func (s *orderService) purgeOldPDFOrders(ctx context.Context, studentID string) {
	cutoff := s.now().Add(-pdfOrderRetention)
	stale, err := s.repo.Order().FindPDFOrdersOlderThan(ctx, studentID, cutoff)
	if err != nil {
		s.logger.Warn("Stale order scan failed", "student_id", studentID, "error", err)
		return
	}
	for _, order := range stale {
		if err := s.repo.Order().Delete(ctx, order.ID); err != nil {
			s.logger.Warn("Stale order purge failed", "order_id", order.ID, "error", err)
		}
	}
}

func (s *orderService) ExpireOverdueItems(ctx context.Context) (*models.ExpirySummary, error) {
	now := s.now()
	summary := &models.ExpirySummary{Timestamp: now.UTC()}

	orders, err := s.repo.Order().FindWithUnexpiredItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}

	for _, order := range orders {
		expired, err := s.expireOrderItems(ctx, order, now)
		if err != nil {
			// One bad order never aborts the batch.
			s.logger.Error("Order expiry update failed", "order_id", order.ID, "error", err)
			summary.FailedOrders = append(summary.FailedOrders, order.ID)
			continue
		}
		if len(expired) > 0 {
			summary.OrdersUpdated++
			summary.ItemsExpired += len(expired)

			event := events.NewDomainEvent(events.EventOrderItemExpired, events.OrderItemExpiredEvent{
				OrderID:      order.ID,
				StudentID:    order.StudentID,
				ExpiredItems: expired,
			})
			if err := s.publisher.PublishDomainEvent(ctx, event); err != nil {
				s.logger.Warn("Failed to publish expiry event", "order_id", order.ID, "error", err)
			}
		}
	}

	s.logger.Info("Expiry sweep finished",
		"orders_scanned", len(orders),
		"orders_updated", summary.OrdersUpdated,
		"items_expired", summary.ItemsExpired,
		"failed_orders", len(summary.FailedOrders))

	return summary, nil
}

// expireOrderItems recomputes the full course_details array: items newly
// past expiry get is_expired set and their download link cleared, the rest
// are copied through unchanged. The write replaces the whole array in one
// update so readers never see a half-applied order.
func (s *orderService) expireOrderItems(ctx context.Context, order *models.Order, now time.Time) ([]string, error) {
	var items []models.CourseItem
	if err := json.Unmarshal(order.CourseDetails, &items); err != nil {
		return nil, fmt.Errorf("malformed course details: %w", err)
	}

	var expired []string
	for i := range items {
		if !items[i].IsExpired && items[i].ExpiryDate.Before(now) {
			items[i].IsExpired = true
			items[i].MainPdfURL = ""
			expired = append(expired, items[i].Name)
		}
	}

	if len(expired) == 0 {
		return nil, nil
	}

	updated, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode course details: %w", err)
	}
	if err := s.repo.Order().ReplaceCourseDetails(ctx, order.ID, datatypes.JSON(updated)); err != nil {
		return nil, err
	}

	return expired, nil
}

func applyDiscount(amount float64, currency string, coupon *models.Coupon) float64 {
	var discounted float64
	switch coupon.DiscountType {
	case models.DiscountPercentage:
		discounted = amount - amount*coupon.DiscountValue/100
	case models.DiscountFixedINR:
		if currency == "INR" {
			discounted = amount - coupon.DiscountValue
		} else {
			discounted = amount
		}
	case models.DiscountFixedUSD:
		if currency == "USD" {
			discounted = amount - coupon.DiscountValue
		} else {
			discounted = amount
		}
	default:
		discounted = amount
	}
	if discounted < 0 {
		return 0
	}
	return discounted
}
