package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/essenzakw/essenza-backend/pkg/db/models"
	"github.com/essenzakw/essenza-backend/pkg/pagination"
)

// UpsertInput carries the customer details captured at checkout. The phone
// number is the identity key; everything else is overwritten on repeat orders.
type UpsertInput struct {
	Name   string
	Phone  string
	Area   string
	Plot   string
	Street string
	House  string
}

type ListFilters struct {
	Query string
}

type ListQuery struct {
	Pagination pagination.Params
	Filters    ListFilters
}

type CustomerDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Area       string    `json:"area"`
	Plot       string    `json:"plot"`
	Street     string    `json:"street"`
	House      string    `json:"house"`
	OrderCount int       `json:"order_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ListResult struct {
	Customers  []CustomerDTO
	NextCursor string
}

func toDTO(row models.Customer) CustomerDTO {
	return CustomerDTO{
		ID:         row.ID,
		Name:       row.Name,
		Phone:      row.Phone,
		Area:       row.Area,
		Plot:       row.Plot,
		Street:     row.Street,
		House:      row.House,
		OrderCount: row.OrderCount,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
