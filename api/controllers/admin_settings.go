package controllers

import (
	"net/http"

	"github.com/tbostore/storefront-backend/api/responses"
	"github.com/tbostore/storefront-backend/api/validators"
	"github.com/tbostore/storefront-backend/internal/settings"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
)

type updateSettingsRequest struct {
	WhatsAppNumber       *string `json:"whatsapp_number,omitempty" validate:"omitempty,min=7,max=20"`
	BankName             *string `json:"bank_name,omitempty" validate:"omitempty,max=120"`
	BankAccountName      *string `json:"bank_account_name,omitempty" validate:"omitempty,max=120"`
	BankIBAN             *string `json:"bank_iban,omitempty" validate:"omitempty,max=34"`
	EnableChatHandoff    *bool   `json:"enable_chat_handoff,omitempty"`
	EnableDirectTransfer *bool   `json:"enable_direct_transfer,omitempty"`
	EnableHostedCheckout *bool   `json:"enable_hosted_checkout,omitempty"`
}

func AdminGetSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		dto, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func AdminUpdateSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var payload updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), settings.UpdateSettingsInput{
			WhatsAppNumber:       payload.WhatsAppNumber,
			BankName:             payload.BankName,
			BankAccountName:      payload.BankAccountName,
			BankIBAN:             payload.BankIBAN,
			EnableChatHandoff:    payload.EnableChatHandoff,
			EnableDirectTransfer: payload.EnableDirectTransfer,
			EnableHostedCheckout: payload.EnableHostedCheckout,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
