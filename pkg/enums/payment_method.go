package enums

import "fmt"

// PaymentMethod describes the checkout path an order was submitted through.
type PaymentMethod string

const (
	PaymentMethodChatHandoff    PaymentMethod = "chat_handoff"
	PaymentMethodDirectTransfer PaymentMethod = "direct_transfer"
	PaymentMethodHostedCheckout PaymentMethod = "hosted_checkout"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodChatHandoff,
	PaymentMethodDirectTransfer,
	PaymentMethodHostedCheckout,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
