package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbostore/storefront-backend/pkg/config"
	"github.com/tbostore/storefront-backend/pkg/db/models"
	"github.com/tbostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
)

// SettingsDTO is the admin-facing payment settings payload.
type SettingsDTO struct {
	ID                   uuid.UUID `json:"id"`
	WhatsAppNumber       string    `json:"whatsapp_number"`
	BankName             string    `json:"bank_name,omitempty"`
	BankAccountName      string    `json:"bank_account_name,omitempty"`
	BankIBAN             string    `json:"bank_iban,omitempty"`
	EnableChatHandoff    bool      `json:"enable_chat_handoff"`
	EnableDirectTransfer bool      `json:"enable_direct_transfer"`
	EnableHostedCheckout bool      `json:"enable_hosted_checkout"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// PublicSettingsDTO is the shopper-facing view: which checkout paths are on
// and the details each one needs.
type PublicSettingsDTO struct {
	WhatsAppNumber  string   `json:"whatsapp_number,omitempty"`
	BankName        string   `json:"bank_name,omitempty"`
	BankAccountName string   `json:"bank_account_name,omitempty"`
	BankIBAN        string   `json:"bank_iban,omitempty"`
	PaymentMethods  []string `json:"payment_methods"`
}

// UpdateSettingsInput holds optional mutation values for payment settings.
type UpdateSettingsInput struct {
	WhatsAppNumber       *string
	BankName             *string
	BankAccountName      *string
	BankIBAN             *string
	EnableChatHandoff    *bool
	EnableDirectTransfer *bool
	EnableHostedCheckout *bool
}

// Service exposes payment settings reads and admin mutation. When no row has
// been saved yet, reads fall back to configuration defaults.
type Service interface {
	Get(ctx context.Context) (*SettingsDTO, error)
	GetPublic(ctx context.Context) (*PublicSettingsDTO, error)
	// MethodEnabled reports whether the checkout path is currently offered.
	MethodEnabled(ctx context.Context, method enums.PaymentMethod) (bool, error)
	Update(ctx context.Context, input UpdateSettingsInput) (*SettingsDTO, error)
}

type service struct {
	repo       *Repository
	defaultsWA config.WhatsAppConfig
}

// NewService constructs a payment settings service instance.
func NewService(repo *Repository, whatsApp config.WhatsAppConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo, defaultsWA: whatsApp}, nil
}

func (s *service) load(ctx context.Context) (*models.PaymentSettings, error) {
	row, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.PaymentSettings{
				WhatsAppNumber:    s.defaultsWA.Number,
				EnableChatHandoff: true,
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment settings")
	}
	return row, nil
}

func (s *service) Get(ctx context.Context) (*SettingsDTO, error) {
	row, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return newSettingsDTO(row), nil
}

func (s *service) GetPublic(ctx context.Context) (*PublicSettingsDTO, error) {
	row, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	dto := &PublicSettingsDTO{PaymentMethods: []string{}}
	if row.EnableChatHandoff {
		dto.PaymentMethods = append(dto.PaymentMethods, enums.PaymentMethodChatHandoff.String())
		dto.WhatsAppNumber = row.WhatsAppNumber
	}
	if row.EnableDirectTransfer {
		dto.PaymentMethods = append(dto.PaymentMethods, enums.PaymentMethodDirectTransfer.String())
		dto.BankName = row.BankName
		dto.BankAccountName = row.BankAccountName
		dto.BankIBAN = row.BankIBAN
	}
	if row.EnableHostedCheckout {
		dto.PaymentMethods = append(dto.PaymentMethods, enums.PaymentMethodHostedCheckout.String())
	}
	return dto, nil
}

func (s *service) MethodEnabled(ctx context.Context, method enums.PaymentMethod) (bool, error) {
	row, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	switch method {
	case enums.PaymentMethodChatHandoff:
		return row.EnableChatHandoff, nil
	case enums.PaymentMethodDirectTransfer:
		return row.EnableDirectTransfer, nil
	case enums.PaymentMethodHostedCheckout:
		return row.EnableHostedCheckout, nil
	default:
		return false, pkgerrors.New(pkgerrors.CodeInvalidInput, "unknown payment method").
			WithDetails(map[string]string{"payment_method": method.String()})
	}
}

func (s *service) Update(ctx context.Context, input UpdateSettingsInput) (*SettingsDTO, error) {
	var dto *SettingsDTO
	// Load and save share a transaction so concurrent admin edits cannot
	// interleave on the single settings row.
	err := s.repo.Transact(ctx, func(repo *Repository) error {
		row, err := repo.Get(ctx)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment settings")
			}
			row = &models.PaymentSettings{
				ID:                uuid.New(),
				WhatsAppNumber:    s.defaultsWA.Number,
				EnableChatHandoff: true,
			}
		}

		if input.WhatsAppNumber != nil {
			row.WhatsAppNumber = strings.TrimSpace(*input.WhatsAppNumber)
		}
		if input.BankName != nil {
			row.BankName = *input.BankName
		}
		if input.BankAccountName != nil {
			row.BankAccountName = *input.BankAccountName
		}
		if input.BankIBAN != nil {
			row.BankIBAN = strings.ToUpper(strings.ReplaceAll(*input.BankIBAN, " ", ""))
		}
		if input.EnableChatHandoff != nil {
			row.EnableChatHandoff = *input.EnableChatHandoff
		}
		if input.EnableDirectTransfer != nil {
			row.EnableDirectTransfer = *input.EnableDirectTransfer
		}
		if input.EnableHostedCheckout != nil {
			row.EnableHostedCheckout = *input.EnableHostedCheckout
		}

		if row.EnableChatHandoff && row.WhatsAppNumber == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "whatsapp_number is required when chat handoff is enabled")
		}
		if row.EnableDirectTransfer && row.BankIBAN == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "bank_iban is required when direct transfer is enabled")
		}

		saved, err := repo.Save(ctx, row)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving payment settings")
		}
		dto = newSettingsDTO(saved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func newSettingsDTO(row *models.PaymentSettings) *SettingsDTO {
	return &SettingsDTO{
		ID:                   row.ID,
		WhatsAppNumber:       row.WhatsAppNumber,
		BankName:             row.BankName,
		BankAccountName:      row.BankAccountName,
		BankIBAN:             row.BankIBAN,
		EnableChatHandoff:    row.EnableChatHandoff,
		EnableDirectTransfer: row.EnableDirectTransfer,
		EnableHostedCheckout: row.EnableHostedCheckout,
		UpdatedAt:            row.UpdatedAt,
	}
}
