package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tbostore/storefront-backend/api/responses"
	"github.com/tbostore/storefront-backend/internal/orders"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
)

// orderStatusResponse is the shopper-facing view of an order. Customer
// details stay admin-only.
type orderStatusResponse struct {
	OrderNumber   string    `json:"order_number"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	TotalHalalas  int64     `json:"total_halalas"`
	CreatedAt     time.Time `json:"created_at"`
}

// TrackOrder resolves an order by its shopper-facing number.
func TrackOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		dto, err := svc.GetByNumber(r.Context(), chi.URLParam(r, "orderNumber"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderStatusResponse{
			OrderNumber:   dto.OrderNumber,
			Status:        dto.Status,
			PaymentMethod: dto.PaymentMethod,
			TotalHalalas:  dto.TotalHalalas,
			CreatedAt:     dto.CreatedAt,
		})
	}
}
