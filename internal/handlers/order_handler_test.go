package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/services"
	"github.com/prepkart/prepkart-api/internal/utils"
)

type stubOrderService struct {
	summary *models.ExpirySummary
	sweeps  int
}

func (s *stubOrderService) Checkout(context.Context, *services.CheckoutRequest) (*models.Order, error) {
	return nil, services.ErrOrderNotFound
}

func (s *stubOrderService) GetByID(context.Context, uint) (*models.Order, error) {
	return nil, services.ErrOrderNotFound
}

func (s *stubOrderService) ListByStudent(context.Context, string) ([]*models.Order, error) {
	return nil, nil
}

func (s *stubOrderService) ExpireOverdueItems(context.Context) (*models.ExpirySummary, error) {
	s.sweeps++
	return s.summary, nil
}

func newSweepRouter(t *testing.T, secret string) (*gin.Engine, *stubOrderService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stub := &stubOrderService{
		summary: &models.ExpirySummary{OrdersUpdated: 2, ItemsExpired: 3, Timestamp: time.Now().UTC()},
	}
	handler := NewOrderHandler(stub, secret, utils.NewSilentLogger())

	router := gin.New()
	router.GET("/api/v1/cron/expire-orders", handler.ExpireOrders)
	return router, stub
}

func TestExpireOrders_RequiresSecret(t *testing.T) {
	router, stub := newSweepRouter(t, "topsecret")

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong secret", "guess", http.StatusUnauthorized},
		{"correct secret", "topsecret", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cron/expire-orders", nil)
			if tc.header != "" {
				req.Header.Set("X-Cron-Secret", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}

	assert.Equal(t, 1, stub.sweeps, "only the authorized call reaches the service")
}

func TestExpireOrders_EmptySecretNeverMatches(t *testing.T) {
	// A deployment without CRON_SECRET must not accept an empty header.
	router, stub := newSweepRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cron/expire-orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, stub.sweeps)
}

func TestExpireOrders_ReportsSummary(t *testing.T) {
	router, _ := newSweepRouter(t, "topsecret")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cron/expire-orders", nil)
	req.Header.Set("X-Cron-Secret", "topsecret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var summary models.ExpirySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.OrdersUpdated)
	assert.Equal(t, 3, summary.ItemsExpired)
}
