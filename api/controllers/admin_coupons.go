package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tbostore/storefront-backend/api/responses"
	"github.com/tbostore/storefront-backend/api/validators"
	coupons "github.com/tbostore/storefront-backend/internal/coupons"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
)

type createCouponRequest struct {
	Code            string     `json:"code" validate:"required,min=2,max=40"`
	DiscountPercent int        `json:"discount_percent" validate:"required,min=1,max=100"`
	IsActive        *bool      `json:"is_active,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

type updateCouponRequest struct {
	DiscountPercent *int       `json:"discount_percent,omitempty" validate:"omitempty,min=1,max=100"`
	IsActive        *bool      `json:"is_active,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	ClearExpiry     bool       `json:"clear_expiry,omitempty"`
}

func AdminListCoupons(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		dtos, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dtos)
	}
}

func AdminCreateCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload createCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isActive := true
		if payload.IsActive != nil {
			isActive = *payload.IsActive
		}

		dto, err := svc.Create(r.Context(), coupons.CreateCouponInput{
			Code:            payload.Code,
			DiscountPercent: payload.DiscountPercent,
			IsActive:        isActive,
			ExpiresAt:       payload.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func AdminUpdateCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "couponId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon id"))
			return
		}

		var payload updateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), id, coupons.UpdateCouponInput{
			DiscountPercent: payload.DiscountPercent,
			IsActive:        payload.IsActive,
			ExpiresAt:       payload.ExpiresAt,
			ClearExpiry:     payload.ClearExpiry,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func AdminDeleteCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "couponId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon id"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
