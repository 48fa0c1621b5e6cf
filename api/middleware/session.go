package middleware

import (
	"net/http"
	"strings"

	"github.com/tbostore/storefront-backend/api/responses"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

// maxSessionIDLength bounds the shopper-supplied identifier so it stays a
// usable redis key fragment.
const maxSessionIDLength = 128

// Session requires the shopper session header on cart, currency, and
// checkout routes and seeds the request context with it. The storefront is
// anonymous; the session id is the only scope carts and preferences hang off.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
			if sessionID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Session-Id header required"))
				return
			}
			if len(sessionID) > maxSessionIDLength || strings.ContainsAny(sessionID, " \t\r\n") {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid session id"))
				return
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
