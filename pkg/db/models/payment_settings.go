package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentSettings is a single admin-managed row controlling which checkout
// paths are offered and the handoff/transfer details they use.
type PaymentSettings struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WhatsAppNumber       string    `gorm:"column:whatsapp_number;not null"`
	BankName             string    `gorm:"column:bank_name"`
	BankAccountName      string    `gorm:"column:bank_account_name"`
	BankIBAN             string    `gorm:"column:bank_iban"`
	EnableChatHandoff    bool      `gorm:"column:enable_chat_handoff;not null"`
	EnableDirectTransfer bool      `gorm:"column:enable_direct_transfer;not null"`
	EnableHostedCheckout bool      `gorm:"column:enable_hosted_checkout;not null"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
