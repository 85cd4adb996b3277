package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepkart/prepkart-api/internal/services"
	"github.com/prepkart/prepkart-api/internal/utils"
)

type OrderHandler struct {
	BaseHandler
	orderService services.OrderService
	cronSecret   string
}

func NewOrderHandler(orderService services.OrderService, cronSecret string, logger utils.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler:  NewBaseHandler(logger),
		orderService: orderService,
		cronSecret:   cronSecret,
	}
}

// Checkout creates an order and a payment gateway transaction
func (h *OrderHandler) Checkout(c *gin.Context) {
	h.LogRequest(c, "Creating order")

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	order, err := h.orderService.Checkout(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrder retrieves an order by ID
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListOrders lists a student's orders; studentId is required.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	studentID := c.Query("studentId")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "studentId query parameter is required",
		})
		return
	}

	orders, err := h.orderService.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// ExpireOrders runs the entitlement-expiry sweep. Guarded by the shared
// cron secret in the X-Cron-Secret header.
func (h *OrderHandler) ExpireOrders(c *gin.Context) {
	secret := c.GetHeader("X-Cron-Secret")
	if h.cronSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.cronSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid cron secret",
		})
		return
	}

	h.LogRequest(c, "Running order expiry sweep")

	summary, err := h.orderService.ExpireOverdueItems(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *OrderHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Order not found",
		})
	case services.IsCouponRejection(err):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Coupon rejected",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrUpstreamFailure):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Payment gateway unavailable",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
