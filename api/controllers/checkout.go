package controllers

import (
	"net/http"

	"github.com/essenzakw/essenza-backend/api/middleware"
	"github.com/essenzakw/essenza-backend/api/responses"
	"github.com/essenzakw/essenza-backend/api/validators"
	"github.com/essenzakw/essenza-backend/internal/checkout"
	pkgerrors "github.com/essenzakw/essenza-backend/pkg/errors"
	"github.com/essenzakw/essenza-backend/pkg/logger"
)

// SubmitCheckout turns the caller's cart into an order.
func SubmitCheckout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body checkout.SubmitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := middleware.CartTokenFromContext(r.Context())
		result, err := svc.Submit(r.Context(), token, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
