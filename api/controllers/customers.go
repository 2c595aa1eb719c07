package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/essenzakw/essenza-backend/api/responses"
	"github.com/essenzakw/essenza-backend/api/validators"
	"github.com/essenzakw/essenza-backend/internal/customers"
	pkgerrors "github.com/essenzakw/essenza-backend/pkg/errors"
	"github.com/essenzakw/essenza-backend/pkg/logger"
	"github.com/essenzakw/essenza-backend/pkg/pagination"
	"github.com/essenzakw/essenza-backend/pkg/types"
)

// ListCustomers serves the dashboard customer list with name/phone search.
func ListCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := customers.ListQuery{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
			Filters: customers.ListFilters{
				Query: validators.SanitizeString(r.URL.Query().Get("q"), 120),
			},
		}

		result, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, result.Customers, types.ListMeta{
			NextCursor: result.NextCursor,
			HasMore:    result.NextCursor != "",
			Limit:      limit,
		})
	}
}

// GetCustomer returns a single customer profile.
func GetCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customer)
	}
}
