package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/prepkart/prepkart-api/internal/events"
	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/utils"
	"github.com/prepkart/prepkart-api/internal/validator"
)

var sweepNow = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

func newOrderFixture(t *testing.T) (*fakeRepo, *events.MockEventPublisher, *fakePaymentService, OrderService) {
	t.Helper()
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	payments := &fakePaymentService{}
	v := validator.New()
	logger := utils.NewSilentLogger()

	coupons := NewCouponService(repo, publisher, logger, v)
	svc := NewOrderService(repo, coupons, payments, publisher, logger, v)
	svc.(*orderService).now = func() time.Time { return sweepNow }
	return repo, publisher, payments, svc
}

func seedOrder(t *testing.T, repo *fakeRepo, studentID string, items []models.CourseItem) *models.Order {
	t.Helper()
	raw, err := json.Marshal(items)
	require.NoError(t, err)
	order := &models.Order{
		Reference:     "ORD-" + studentID + "-" + time.Now().Format("150405.000000000"),
		StudentID:     studentID,
		Amount:        499,
		Currency:      "INR",
		Status:        models.OrderPaid,
		CourseDetails: datatypes.JSON(raw),
	}
	require.NoError(t, repo.orders.Create(context.Background(), order))
	return order
}

func orderItems(t *testing.T, repo *fakeRepo, orderID uint) []models.CourseItem {
	t.Helper()
	order, err := repo.orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	var items []models.CourseItem
	require.NoError(t, json.Unmarshal(order.CourseDetails, &items))
	return items
}

func TestExpireOverdueItems_MixedOrder(t *testing.T) {
	repo, publisher, _, svc := newOrderFixture(t)

	order := seedOrder(t, repo, "student-1", []models.CourseItem{
		{Name: "Physics PDF", ItemType: "pdf", MainPdfURL: "https://cdn.example.com/phy.pdf", ExpiryDate: sweepNow.Add(-24 * time.Hour)},
		{Name: "Chemistry Engine", ItemType: "engine", ExpiryDate: sweepNow.Add(30 * 24 * time.Hour)},
	})

	summary, err := svc.ExpireOverdueItems(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.OrdersUpdated)
	assert.Equal(t, 1, summary.ItemsExpired)
	assert.Empty(t, summary.FailedOrders)

	items := orderItems(t, repo, order.ID)
	assert.True(t, items[0].IsExpired)
	assert.Empty(t, items[0].MainPdfURL, "revoked item must lose its download link")
	assert.False(t, items[1].IsExpired)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventOrderItemExpired, published[0].Type)
}

func TestExpireOverdueItems_Idempotent(t *testing.T) {
	repo, _, _, svc := newOrderFixture(t)

	seedOrder(t, repo, "student-1", []models.CourseItem{
		{Name: "Physics PDF", ItemType: "pdf", ExpiryDate: sweepNow.Add(-time.Hour)},
	})

	first, err := svc.ExpireOverdueItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.ItemsExpired)

	second, err := svc.ExpireOverdueItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.OrdersUpdated)
	assert.Equal(t, 0, second.ItemsExpired)
}

func TestExpireOverdueItems_FutureExpiryUntouched(t *testing.T) {
	repo, _, _, svc := newOrderFixture(t)

	order := seedOrder(t, repo, "student-1", []models.CourseItem{
		{Name: "Physics PDF", ItemType: "pdf", MainPdfURL: "https://cdn.example.com/phy.pdf", ExpiryDate: sweepNow.Add(48 * time.Hour)},
	})

	summary, err := svc.ExpireOverdueItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.OrdersUpdated)

	items := orderItems(t, repo, order.ID)
	assert.False(t, items[0].IsExpired)
	assert.NotEmpty(t, items[0].MainPdfURL)
}

func TestExpireOverdueItems_FailureIsolation(t *testing.T) {
	repo, _, _, svc := newOrderFixture(t)

	broken := seedOrder(t, repo, "student-1", []models.CourseItem{
		{Name: "Bio PDF", ItemType: "pdf", ExpiryDate: sweepNow.Add(-time.Hour)},
	})
	healthy := seedOrder(t, repo, "student-2", []models.CourseItem{
		{Name: "Math PDF", ItemType: "pdf", ExpiryDate: sweepNow.Add(-time.Hour)},
	})
	repo.orders.replaceErr[broken.ID] = errors.New("connection reset")

	summary, err := svc.ExpireOverdueItems(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.OrdersUpdated)
	assert.Equal(t, []uint{broken.ID}, summary.FailedOrders)
	assert.True(t, orderItems(t, repo, healthy.ID)[0].IsExpired)
	assert.False(t, orderItems(t, repo, broken.ID)[0].IsExpired)
}

func TestCheckout_CreatesOrderWithGatewayHandles(t *testing.T) {
	repo, _, _, svc := newOrderFixture(t)

	order, err := svc.Checkout(context.Background(), &CheckoutRequest{
		StudentID: "student-1",
		Currency:  "INR",
		Amount:    999,
		Items: []models.CourseItem{
			{Name: "JEE Bundle", ItemType: "engine", ExpiryDate: sweepNow.Add(365 * 24 * time.Hour)},
		},
		Customer: CustomerInfo{FirstName: "Asha", Email: "asha@example.com"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, order.Reference)
	assert.NotEmpty(t, order.GatewayToken)
	assert.NotEmpty(t, order.GatewayRedirectURL)
	assert.Equal(t, models.OrderPending, order.Status)

	stored, err := repo.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 999.0, stored.Amount)
}

func TestCheckout_AppliesCouponAndRedeems(t *testing.T) {
	repo, _, _, svc := newOrderFixture(t)

	coupon := &models.Coupon{
		Name:          "Launch",
		Code:          "LAUNCH_042",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		MaxUseLimit:   5,
		// Validate uses the wall clock, not the injected sweep time.
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(24 * time.Hour),
		IsActive:  true,
	}
	require.NoError(t, repo.coupons.Create(context.Background(), coupon))

	order, err := svc.Checkout(context.Background(), &CheckoutRequest{
		StudentID: "student-1",
		Amount:    1000,
		Coupon:    " launch_042 ",
		Items: []models.CourseItem{
			{Name: "JEE Bundle", ItemType: "engine", ExpiryDate: sweepNow.Add(365 * 24 * time.Hour)},
		},
		Customer: CustomerInfo{FirstName: "Asha", Email: "asha@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, 900.0, order.Amount)
	assert.Equal(t, "LAUNCH_042", order.CouponCode)

	stored, err := repo.coupons.GetByID(context.Background(), coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsedCount)
}

func TestCheckout_GatewayFailure(t *testing.T) {
	repo, _, payments, svc := newOrderFixture(t)
	payments.fail = true

	_, err := svc.Checkout(context.Background(), &CheckoutRequest{
		StudentID: "student-1",
		Amount:    500,
		Items: []models.CourseItem{
			{Name: "NEET PDF", ItemType: "pdf", ExpiryDate: sweepNow.Add(90 * 24 * time.Hour)},
		},
		Customer: CustomerInfo{FirstName: "Asha", Email: "asha@example.com"},
	})
	assert.ErrorIs(t, err, ErrUpstreamFailure)

	orders, listErr := repo.orders.GetByStudent(context.Background(), "student-1")
	require.NoError(t, listErr)
	assert.Empty(t, orders, "no order row when the gateway refuses")
}

func TestListByStudent_PurgesOldPDFOrders(t *testing.T) {
	repo, _, _, svc := newOrderFixture(t)

	stale := seedOrder(t, repo, "student-1", []models.CourseItem{
		{Name: "Old PDF", ItemType: "pdf", ExpiryDate: sweepNow.Add(-100 * 24 * time.Hour), IsExpired: true},
	})
	stale.CreatedAt = sweepNow.Add(-120 * 24 * time.Hour)

	engine := seedOrder(t, repo, "student-1", []models.CourseItem{
		{Name: "Old Engine", ItemType: "engine", ExpiryDate: sweepNow.Add(-100 * 24 * time.Hour), IsExpired: true},
	})
	engine.CreatedAt = sweepNow.Add(-120 * 24 * time.Hour)

	recent := seedOrder(t, repo, "student-1", []models.CourseItem{
		{Name: "New PDF", ItemType: "pdf", ExpiryDate: sweepNow.Add(90 * 24 * time.Hour)},
	})
	recent.CreatedAt = sweepNow.Add(-10 * 24 * time.Hour)

	orders, err := svc.ListByStudent(context.Background(), "student-1")
	require.NoError(t, err)

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	assert.NotContains(t, ids, stale.ID, "PDF-only orders past retention are purged")
	assert.Contains(t, ids, engine.ID, "engine orders are kept regardless of age")
	assert.Contains(t, ids, recent.ID)
}

func TestApplyDiscount(t *testing.T) {
	percentage := &models.Coupon{DiscountType: models.DiscountPercentage, DiscountValue: 25}
	fixedINR := &models.Coupon{DiscountType: models.DiscountFixedINR, DiscountValue: 200}
	fixedUSD := &models.Coupon{DiscountType: models.DiscountFixedUSD, DiscountValue: 5}

	assert.Equal(t, 750.0, applyDiscount(1000, "INR", percentage))
	assert.Equal(t, 800.0, applyDiscount(1000, "INR", fixedINR))
	assert.Equal(t, 1000.0, applyDiscount(1000, "USD", fixedINR), "fixed INR discount only applies to INR orders")
	assert.Equal(t, 15.0, applyDiscount(20, "USD", fixedUSD))
	assert.Equal(t, 0.0, applyDiscount(100, "INR", &models.Coupon{DiscountType: models.DiscountFixedINR, DiscountValue: 500}), "floored at zero")
}
