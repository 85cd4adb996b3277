package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/repositories"
	"github.com/prepkart/prepkart-api/internal/services"
	"github.com/prepkart/prepkart-api/internal/utils"
)

type CouponHandler struct {
	BaseHandler
	couponService services.CouponService
}

func NewCouponHandler(couponService services.CouponService, logger utils.Logger) *CouponHandler {
	return &CouponHandler{
		BaseHandler:   NewBaseHandler(logger),
		couponService: couponService,
	}
}

type validateCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// ValidateCoupon checks a coupon code at checkout time and returns the
// discount details when it is redeemable.
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	coupon, err := h.couponService.Validate(c.Request.Context(), req.Code)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coupon": gin.H{
			"id":       coupon.ID,
			"code":     coupon.Code,
			"discount": coupon.DiscountValue,
			"type":     coupon.DiscountType,
			"name":     coupon.Name,
		},
	})
}

// CreateCoupon creates a new coupon with a generated code
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	h.LogRequest(c, "Creating coupon")

	var coupon models.Coupon
	if err := c.ShouldBindJSON(&coupon); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	created, err := h.couponService.Create(c.Request.Context(), &coupon)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetCoupon retrieves a coupon by ID
func (h *CouponHandler) GetCoupon(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	coupon, err := h.couponService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, coupon)
}

// ListCoupons lists coupons with optional filters
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	filters := repositories.CouponFilters{
		Limit:     parseIntQuery(c, "limit", 20),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if active := c.Query("is_active"); active != "" {
		isActive := active == "true"
		filters.IsActive = &isActive
	}

	coupons, total, err := h.couponService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Data:       coupons,
		TotalCount: total,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	})
}

// UpdateCoupon updates a coupon
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var coupon models.Coupon
	if err := c.ShouldBindJSON(&coupon); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	updated, err := h.couponService.Update(c.Request.Context(), id, &coupon)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteCoupon deletes a coupon
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Coupon deleted"})
}

func (h *CouponHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrCouponNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Coupon not found",
		})
	case errors.Is(err, services.ErrCouponNotYetActive):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Coupon is not active yet",
		})
	case errors.Is(err, services.ErrCouponExpired):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Coupon has expired",
		})
	case errors.Is(err, services.ErrCouponExhausted):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Coupon usage limit reached",
		})
	case errors.Is(err, services.ErrCouponInactive):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Coupon is disabled",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
