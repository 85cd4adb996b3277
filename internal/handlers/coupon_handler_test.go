package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/repositories"
	"github.com/prepkart/prepkart-api/internal/services"
	"github.com/prepkart/prepkart-api/internal/utils"
)

type stubCouponService struct {
	coupon *models.Coupon
	err    error
}

func (s *stubCouponService) Create(context.Context, *models.Coupon) (*models.Coupon, error) {
	return nil, s.err
}
func (s *stubCouponService) GetByID(context.Context, uint) (*models.Coupon, error) {
	return nil, s.err
}
func (s *stubCouponService) Update(context.Context, uint, *models.Coupon) (*models.Coupon, error) {
	return nil, s.err
}
func (s *stubCouponService) Delete(context.Context, uint) error { return s.err }
func (s *stubCouponService) List(context.Context, repositories.CouponFilters) ([]*models.Coupon, int64, error) {
	return nil, 0, s.err
}
func (s *stubCouponService) Validate(context.Context, string) (*models.Coupon, error) {
	return s.coupon, s.err
}
func (s *stubCouponService) Redeem(context.Context, uint, uint) error { return s.err }

func validateCoupon(t *testing.T, svc services.CouponService, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewCouponHandler(svc, utils.NewSilentLogger())
	router := gin.New()
	router.POST("/api/v1/coupons/validate", handler.ValidateCoupon)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestValidateCoupon_Success(t *testing.T) {
	rec := validateCoupon(t, &stubCouponService{
		coupon: &models.Coupon{
			ID:            7,
			Name:          "Diwali",
			Code:          "DIWALI_123",
			DiscountType:  models.DiscountPercentage,
			DiscountValue: 20,
		},
	}, `{"code": "diwali_123"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Coupon struct {
			ID       uint    `json:"id"`
			Code     string  `json:"code"`
			Discount float64 `json:"discount"`
			Name     string  `json:"name"`
		} `json:"coupon"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, uint(7), payload.Coupon.ID)
	assert.Equal(t, "DIWALI_123", payload.Coupon.Code)
	assert.Equal(t, 20.0, payload.Coupon.Discount)
	assert.Equal(t, "Diwali", payload.Coupon.Name)
}

func TestValidateCoupon_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown code", services.ErrCouponNotFound, http.StatusNotFound},
		{"not yet active", services.ErrCouponNotYetActive, http.StatusUnprocessableEntity},
		{"expired", services.ErrCouponExpired, http.StatusUnprocessableEntity},
		{"exhausted", services.ErrCouponExhausted, http.StatusUnprocessableEntity},
		{"inactive", services.ErrCouponInactive, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := validateCoupon(t, &stubCouponService{err: tc.err}, `{"code": "X"}`)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestValidateCoupon_MissingCode(t *testing.T) {
	rec := validateCoupon(t, &stubCouponService{}, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
