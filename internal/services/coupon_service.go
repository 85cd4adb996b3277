package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/prepkart/prepkart-api/internal/events"
	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/repositories"
	"github.com/prepkart/prepkart-api/internal/utils"
	"github.com/prepkart/prepkart-api/internal/validator"
)

const couponCodeAttempts = 10

type CouponService interface {
	Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	GetByID(ctx context.Context, id uint) (*models.Coupon, error)
	Update(ctx context.Context, id uint, coupon *models.Coupon) (*models.Coupon, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.CouponFilters) ([]*models.Coupon, int64, error)

	// Validate checks redeemability of a raw code: normalization, existence,
	// active flag, validity window, and the usage cap.
	Validate(ctx context.Context, code string) (*models.Coupon, error)

	// Redeem consumes one use after a successful checkout.
	Redeem(ctx context.Context, couponID, orderID uint) error
}

type couponService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validator.Validator
}

func NewCouponService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger, v *validator.Validator) CouponService {
	return &couponService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *couponService) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	if err := s.validator.ValidateStruct(coupon); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := validateCouponBounds(coupon); err != nil {
		return nil, err
	}

	code, err := s.generateCode(ctx, coupon.Name)
	if err != nil {
		return nil, err
	}
	coupon.Code = code

	if err := s.repo.Coupon().Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.logger.Info("Coupon created", "coupon_id", coupon.ID, "code", coupon.Code)
	return coupon, nil
}

func (s *couponService) GetByID(ctx context.Context, id uint) (*models.Coupon, error) {
	coupon, err := s.repo.Coupon().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return coupon, nil
}

func (s *couponService) Update(ctx context.Context, id uint, update *models.Coupon) (*models.Coupon, error) {
	coupon, err := s.repo.Coupon().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	// Code and usage counters survive edits.
	update.ID = coupon.ID
	update.Code = coupon.Code
	update.UsedCount = coupon.UsedCount
	update.CreatedAt = coupon.CreatedAt

	if err := s.validator.ValidateStruct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := validateCouponBounds(update); err != nil {
		return nil, err
	}

	if err := s.repo.Coupon().Update(ctx, update); err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}

	s.logger.Info("Coupon updated", "coupon_id", id)
	return update, nil
}

func (s *couponService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Coupon().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCouponNotFound
		}
		return fmt.Errorf("failed to get coupon: %w", err)
	}
	if err := s.repo.Coupon().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	s.logger.Info("Coupon deleted", "coupon_id", id)
	return nil
}

func (s *couponService) List(ctx context.Context, filters repositories.CouponFilters) ([]*models.Coupon, int64, error) {
	coupons, total, err := s.repo.Coupon().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, total, nil
}

func (s *couponService) Validate(ctx context.Context, code string) (*models.Coupon, error) {
	normalized := NormalizeCouponCode(code)
	if normalized == "" {
		return nil, NewValidationError("code", "is required", code)
	}

	coupon, err := s.repo.Coupon().GetByCode(ctx, normalized)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}

	return CheckRedeemable(coupon, time.Now())
}

func (s *couponService) Redeem(ctx context.Context, couponID, orderID uint) error {
	ok, err := s.repo.Coupon().IncrementUsage(ctx, couponID)
	if err != nil {
		return fmt.Errorf("failed to redeem coupon: %w", err)
	}
	if !ok {
		return ErrCouponExhausted
	}

	coupon, err := s.repo.Coupon().GetByID(ctx, couponID)
	if err != nil {
		return nil
	}

	event := events.NewDomainEvent(events.EventCouponRedeemed, events.CouponRedeemedEvent{
		CouponID:  coupon.ID,
		Code:      coupon.Code,
		OrderID:   orderID,
		UsedCount: coupon.UsedCount,
	})
	if err := s.publisher.PublishDomainEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish coupon event", "coupon_id", couponID, "error", err)
	}
	return nil
}

// NormalizeCouponCode trims and uppercases a raw code before lookup.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckRedeemable applies the redemption-time rules as of now. Split out
// from Validate so tests can pin the clock.
func CheckRedeemable(coupon *models.Coupon, now time.Time) (*models.Coupon, error) {
	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}
	if now.Before(coupon.StartDate) {
		return nil, ErrCouponNotYetActive
	}
	if now.After(coupon.EndDate) {
		return nil, ErrCouponExpired
	}
	if coupon.UsedCount >= coupon.MaxUseLimit {
		return nil, ErrCouponExhausted
	}
	return coupon, nil
}

func validateCouponBounds(coupon *models.Coupon) error {
	var errs ValidationErrors
	if coupon.DiscountType == models.DiscountPercentage &&
		(coupon.DiscountValue < 1 || coupon.DiscountValue > 100) {
		errs = append(errs, *NewValidationError("discount_value", "percentage discount must be between 1 and 100", coupon.DiscountValue))
	}
	if !coupon.EndDate.After(coupon.StartDate) {
		errs = append(errs, *NewValidationError("end_date", "must be after start date", coupon.EndDate))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// generateCode builds NAME_### from the coupon name plus a random 3-digit
// suffix, retrying on the rare collision.
func (s *couponService) generateCode(ctx context.Context, name string) (string, error) {
	base := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	if len(base) > 12 {
		base = base[:12]
	}

	for i := 0; i < couponCodeAttempts; i++ {
		code := fmt.Sprintf("%s_%03d", base, rand.Intn(1000))
		exists, err := s.repo.Coupon().ExistsByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check coupon code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique coupon code for %q", name)
}
