package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/tbostore/storefront-backend/pkg/db/models"
	"github.com/tbostore/storefront-backend/pkg/types"
)

// OrderDTO is the order payload returned to admin clients and to the
// post-checkout confirmation read.
type OrderDTO struct {
	ID              uuid.UUID        `json:"id"`
	OrderNumber     string           `json:"order_number"`
	CustomerName    string           `json:"customer_name"`
	CustomerPhone   string           `json:"customer_phone"`
	CustomerAddress string           `json:"customer_address"`
	Items           types.OrderItems `json:"items"`
	PaymentMethod   string           `json:"payment_method"`
	Currency        string           `json:"currency"`
	SubtotalHalalas int64            `json:"subtotal_halalas"`
	DiscountPercent int              `json:"discount_percent"`
	TotalHalalas    int64            `json:"total_halalas"`
	CouponCode      *string          `json:"coupon_code,omitempty"`
	Status          string           `json:"status"`
	Notes           *string          `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewOrderDTO builds a DTO from the persisted model.
func NewOrderDTO(order *models.Order) *OrderDTO {
	return &OrderDTO{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		CustomerAddress: order.CustomerAddress,
		Items:           order.Items,
		PaymentMethod:   order.PaymentMethod.String(),
		Currency:        order.Currency.String(),
		SubtotalHalalas: order.SubtotalHalalas,
		DiscountPercent: order.DiscountPercent,
		TotalHalalas:    order.TotalHalalas,
		CouponCode:      order.CouponCode,
		Status:          order.Status.String(),
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// NewOrderDTOs maps a slice of models.
func NewOrderDTOs(found []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(found))
	for i := range found {
		dtos = append(dtos, *NewOrderDTO(&found[i]))
	}
	return dtos
}
