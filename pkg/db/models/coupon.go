package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is a percent-off discount code. Validity (active + unexpired) is
// enforced at order submission, not at storage time.
type Coupon struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code            string     `gorm:"column:code;uniqueIndex;not null"`
	DiscountPercent int        `gorm:"column:discount_percent;not null"`
	IsActive        bool       `gorm:"column:is_active;not null"`
	ExpiresAt       *time.Time `gorm:"column:expires_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
