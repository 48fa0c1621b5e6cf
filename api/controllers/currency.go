package controllers

import (
	"net/http"

	"github.com/tbostore/storefront-backend/api/middleware"
	"github.com/tbostore/storefront-backend/api/responses"
	"github.com/tbostore/storefront-backend/api/validators"
	"github.com/tbostore/storefront-backend/internal/currency"
	"github.com/tbostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
)

type setCurrencyRequest struct {
	Currency string `json:"currency" validate:"required,oneof=SAR USD"`
}

func GetCurrency(svc currency.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "currency service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		cur := svc.DisplayCurrency(r.Context(), sessionID)

		responses.WriteSuccess(w, map[string]string{"currency": cur.String()})
	}
}

// SetCurrency persists the session's display currency preference.
func SetCurrency(svc currency.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "currency service unavailable"))
			return
		}

		var payload setCurrencyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cur, err := enums.ParseCurrency(payload.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported currency"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := svc.SetDisplayCurrency(r.Context(), sessionID, cur); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"currency": cur.String()})
	}
}
