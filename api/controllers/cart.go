package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tbostore/storefront-backend/api/middleware"
	"github.com/tbostore/storefront-backend/api/responses"
	"github.com/tbostore/storefront-backend/api/validators"
	"github.com/tbostore/storefront-backend/internal/cart"
	"github.com/tbostore/storefront-backend/internal/currency"
	product "github.com/tbostore/storefront-backend/internal/products"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type setCartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

type cartItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	NameAR    string          `json:"name_ar"`
	ImageURL  string          `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice currency.Amount `json:"unit_price"`
	LineTotal currency.Amount `json:"line_total"`
}

type cartResponse struct {
	Items          []cartItemResponse `json:"items"`
	TotalItemCount int                `json:"total_item_count"`
	Subtotal       currency.Amount    `json:"subtotal"`
}

// GetCart returns the session's cart with totals quoted in the session's
// display currency.
func GetCart(carts *cart.Manager, currencySvc currency.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if carts == nil || currencySvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		snapshot := carts.GetOrCreate(sessionID).Snapshot()

		payload, err := newCartResponse(r, currencySvc, sessionID, snapshot)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

// AddCartItem resolves the product server-side so client payloads can never
// spoof a price, then merges it into the session's cart.
func AddCartItem(carts *cart.Manager, productSvc product.Service, currencySvc currency.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if carts == nil || productSvc == nil || currencySvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := productSvc.Get(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !dto.IsActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product is not available"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		store := carts.GetOrCreate(sessionID)

		line := cart.Line{
			ProductID:        dto.ID.String(),
			Name:             dto.Name,
			NameAR:           dto.NameAR,
			UnitPriceHalalas: dto.PriceHalalas,
			ImageURL:         dto.ImageURL,
		}
		if err := store.AddItem(line, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := newCartResponse(r, currencySvc, sessionID, store.Snapshot())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// SetCartQuantity overwrites a line's quantity; zero removes the line.
func SetCartQuantity(carts *cart.Manager, currencySvc currency.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if carts == nil || currencySvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id required"))
			return
		}

		var payload setCartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		store := carts.GetOrCreate(sessionID)
		store.SetQuantity(productID, payload.Quantity)

		resp, err := newCartResponse(r, currencySvc, sessionID, store.Snapshot())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func RemoveCartItem(carts *cart.Manager, currencySvc currency.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if carts == nil || currencySvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id required"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		store := carts.GetOrCreate(sessionID)
		store.RemoveItem(productID)

		resp, err := newCartResponse(r, currencySvc, sessionID, store.Snapshot())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func ClearCart(carts *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if carts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		carts.GetOrCreate(sessionID).Clear()

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func newCartResponse(r *http.Request, currencySvc currency.Service, sessionID string, snapshot cart.Snapshot) (*cartResponse, error) {
	items := make([]cartItemResponse, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		unit, err := currencySvc.Quote(r.Context(), sessionID, line.UnitPriceHalalas)
		if err != nil {
			return nil, err
		}
		lineTotal, err := currencySvc.Quote(r.Context(), sessionID, line.UnitPriceHalalas*int64(line.Quantity))
		if err != nil {
			return nil, err
		}
		items = append(items, cartItemResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			NameAR:    line.NameAR,
			ImageURL:  line.ImageURL,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
	}

	subtotal, err := currencySvc.Quote(r.Context(), sessionID, snapshot.SubtotalHalalas())
	if err != nil {
		return nil, err
	}

	return &cartResponse{
		Items:          items,
		TotalItemCount: snapshot.TotalItemCount(),
		Subtotal:       subtotal,
	}, nil
}
