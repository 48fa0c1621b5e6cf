package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tbostore/storefront-backend/api/responses"
	coupons "github.com/tbostore/storefront-backend/internal/coupons"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
)

type couponValidationResponse struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}

// ValidateCoupon resolves a shopper-entered code into a usable discount.
func ValidateCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		discount, err := svc.Validate(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, couponValidationResponse{
			Code:            discount.Code,
			DiscountPercent: discount.Percent,
		})
	}
}
