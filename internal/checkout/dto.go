package checkout

import (
	"github.com/tbostore/storefront-backend/pkg/enums"
)

// SubmitInput carries the shopper-entered details for one submission attempt.
type SubmitInput struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Notes           *string
	PaymentMethod   enums.PaymentMethod
	CouponCode      *string
	Language        enums.Language
}

// BankDetails surfaces the transfer destination on the direct transfer path.
type BankDetails struct {
	BankName        string `json:"bank_name"`
	BankAccountName string `json:"bank_account_name"`
	BankIBAN        string `json:"bank_iban"`
}

// SubmitResult reports the outcome of a submission attempt. RedirectURL is
// the wa.me deep link on the chat handoff path and the hosted payment page on
// the hosted checkout path.
type SubmitResult struct {
	State           enums.CheckoutState `json:"state"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	OrderNumber     string              `json:"order_number,omitempty"`
	RedirectURL     string              `json:"redirect_url,omitempty"`
	StripeSessionID string              `json:"stripe_session_id,omitempty"`
	SubtotalHalalas int64               `json:"subtotal_halalas"`
	DiscountPercent int                 `json:"discount_percent"`
	TotalHalalas    int64               `json:"total_halalas"`
	BankDetails     *BankDetails        `json:"bank_details,omitempty"`
}
