package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tbostore/storefront-backend/pkg/enums"
	"github.com/tbostore/storefront-backend/pkg/types"
)

// Order is the durable record produced by a successful submission. The order
// number is assigned by the repository at insert time, never by callers.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string              `gorm:"column:order_number;uniqueIndex;not null"`
	CustomerName    string              `gorm:"column:customer_name;not null"`
	CustomerPhone   string              `gorm:"column:customer_phone;not null"`
	CustomerAddress string              `gorm:"column:customer_address;not null"`
	Items           types.OrderItems    `gorm:"column:items;type:jsonb;serializer:json;not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Currency        enums.Currency      `gorm:"column:currency;type:text;not null;default:'SAR'"`
	SubtotalHalalas int64               `gorm:"column:subtotal_halalas;not null"`
	DiscountPercent int                 `gorm:"column:discount_percent;not null;default:0"`
	TotalHalalas    int64               `gorm:"column:total_halalas;not null"`
	CouponCode      *string             `gorm:"column:coupon_code"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	Notes           *string             `gorm:"column:notes"`
	StripeSessionID *string             `gorm:"column:stripe_session_id;index"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
