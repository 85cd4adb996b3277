package models

import (
	"time"

	"gorm.io/gorm"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixedINR   DiscountType = "fixed_inr"
	DiscountFixedUSD   DiscountType = "fixed_usd"
)

// Coupon is a discount code with a validity window and a usage cap.
// Codes are generated as NAME_### and stored uppercase.
type Coupon struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Code string `json:"code" gorm:"not null;size:50;uniqueIndex"`

	DiscountType  DiscountType `json:"discount_type" gorm:"not null" validate:"required,discount_type"`
	DiscountValue float64      `json:"discount_value" gorm:"not null" validate:"required,gt=0"`

	MaxUseLimit int `json:"max_use_limit" gorm:"default:1" validate:"min=1"`
	UsedCount   int `json:"used_count" gorm:"default:0"`

	StartDate time.Time `json:"start_date" gorm:"not null" validate:"required"`
	EndDate   time.Time `json:"end_date" gorm:"not null" validate:"required"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Coupon) TableName() string {
	return "coupons"
}
