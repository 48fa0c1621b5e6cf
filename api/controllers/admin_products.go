package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tbostore/storefront-backend/api/responses"
	"github.com/tbostore/storefront-backend/api/validators"
	product "github.com/tbostore/storefront-backend/internal/products"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
)

type createProductRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=200"`
	NameAR       string `json:"name_ar" validate:"required,min=1,max=200"`
	Description  string `json:"description,omitempty" validate:"omitempty,max=2000"`
	PriceHalalas int64  `json:"price_halalas" validate:"required,min=1"`
	ImageURL     string `json:"image_url,omitempty" validate:"omitempty,url,max=500"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

type updateProductRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	NameAR       *string `json:"name_ar,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	PriceHalalas *int64  `json:"price_halalas,omitempty" validate:"omitempty,min=1"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,max=500"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// AdminListProducts lists the full catalog, inactive products included.
func AdminListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		dtos, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dtos)
	}
}

func AdminCreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isActive := true
		if payload.IsActive != nil {
			isActive = *payload.IsActive
		}

		dto, err := svc.Create(r.Context(), product.CreateProductInput{
			Name:         payload.Name,
			NameAR:       payload.NameAR,
			Description:  payload.Description,
			PriceHalalas: payload.PriceHalalas,
			ImageURL:     payload.ImageURL,
			IsActive:     isActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func AdminUpdateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), id, product.UpdateProductInput{
			Name:         payload.Name,
			NameAR:       payload.NameAR,
			Description:  payload.Description,
			PriceHalalas: payload.PriceHalalas,
			ImageURL:     payload.ImageURL,
			IsActive:     payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func AdminDeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
