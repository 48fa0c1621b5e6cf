package controllers

import (
	"net/http"
	"strings"

	"github.com/tbostore/storefront-backend/api/middleware"
	"github.com/tbostore/storefront-backend/api/responses"
	"github.com/tbostore/storefront-backend/api/validators"
	checkoutsvc "github.com/tbostore/storefront-backend/internal/checkout"
	"github.com/tbostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
)

type checkoutRequest struct {
	CustomerName    string  `json:"customer_name" validate:"required,min=2,max=120"`
	CustomerPhone   string  `json:"customer_phone" validate:"required,min=7,max=20"`
	CustomerAddress string  `json:"customer_address" validate:"required,min=5,max=500"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	PaymentMethod   string  `json:"payment_method" validate:"required,oneof=chat_handoff direct_transfer hosted_checkout"`
	CouponCode      *string `json:"coupon_code,omitempty" validate:"omitempty,max=40"`
	Language        string  `json:"language,omitempty" validate:"omitempty,oneof=en ar"`
}

// Checkout submits the session's cart through the chosen payment path.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method"))
			return
		}

		lang := enums.LanguageEnglish
		if payload.Language != "" {
			lang, err = enums.ParseLanguage(payload.Language)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported language"))
				return
			}
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		result, err := svc.Submit(r.Context(), sessionID, checkoutsvc.SubmitInput{
			CustomerName:    payload.CustomerName,
			CustomerPhone:   payload.CustomerPhone,
			CustomerAddress: payload.CustomerAddress,
			Notes:           payload.Notes,
			PaymentMethod:   method,
			CouponCode:      payload.CouponCode,
			Language:        lang,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckoutConfirm reports whether the webhook has recorded the hosted
// checkout order yet; on success the session's cart is cleared.
func CheckoutConfirm(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		stripeSessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
		if stripeSessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session_id query parameter required"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		order, err := svc.Confirm(r.Context(), sessionID, stripeSessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
