package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/essenzakw/essenza-backend/pkg/logger"
)

// CartTokenHeader identifies the shopper's cart across requests.
const CartTokenHeader = "X-Cart-Token"

// CartToken reads the cart token header, minting a fresh token when the
// client does not send one or sends something that is not a UUID. The token
// in effect is always echoed back so the client can persist it.
func CartToken(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(CartTokenHeader))
			if _, err := uuid.Parse(token); err != nil {
				token = uuid.NewString()
			}

			w.Header().Set(CartTokenHeader, token)

			ctx := WithCartToken(r.Context(), token)
			if logg != nil {
				ctx = logg.WithCartToken(ctx, token)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
