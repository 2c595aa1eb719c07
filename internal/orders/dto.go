package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/essenzakw/essenza-backend/pkg/db/models"
	"github.com/essenzakw/essenza-backend/pkg/enums"
	"github.com/essenzakw/essenza-backend/pkg/pagination"
	"github.com/essenzakw/essenza-backend/pkg/types"
)

// CreateOrderInput is assembled by checkout after the cart has been
// reconciled and repriced. Prices here are already final.
type CreateOrderInput struct {
	Customer      *models.Customer
	PaymentMethod enums.PaymentMethod
	Notes         *string
	Subtotal      types.Money
	DeliveryFee   types.Money
	Total         types.Money
	Items         []CreateOrderItem
}

type CreateOrderItem struct {
	ProductID uuid.UUID
	Title     string
	ImageURL  string
	UnitPrice types.Money
	Quantity  int
}

// StatusUpdate carries the shipped/delivered flags from the dashboard. Nil
// fields are left untouched.
type StatusUpdate struct {
	IsShipped   *bool
	IsDelivered *bool
}

// StatusFilter narrows the dashboard order list by fulfilment state.
type StatusFilter string

const (
	StatusAny       StatusFilter = ""
	StatusPending   StatusFilter = "pending"
	StatusShipped   StatusFilter = "shipped"
	StatusDelivered StatusFilter = "delivered"
)

type ListFilters struct {
	CustomerID uuid.UUID
	Status     StatusFilter
}

type ListQuery struct {
	Pagination pagination.Params
	Filters    ListFilters
}

type OrderItemDTO struct {
	ID        uuid.UUID   `json:"id"`
	ProductID *uuid.UUID  `json:"product_id"`
	Title     string      `json:"title"`
	ImageURL  string      `json:"image_url"`
	UnitPrice types.Money `json:"unit_price"`
	Quantity  int         `json:"quantity"`
	LineTotal types.Money `json:"line_total"`
}

type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   int64               `json:"order_number"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	Area          string              `json:"area"`
	Plot          string              `json:"plot"`
	Street        string              `json:"street"`
	House         string              `json:"house"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Subtotal      types.Money         `json:"subtotal"`
	DeliveryFee   types.Money         `json:"delivery_fee"`
	Total         types.Money         `json:"total"`
	Notes         *string             `json:"notes,omitempty"`
	IsShipped     bool                `json:"is_shipped"`
	IsDelivered   bool                `json:"is_delivered"`
	Items         []OrderItemDTO      `json:"items,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type ListResult struct {
	Orders     []OrderDTO
	NextCursor string
}

func toDTO(row models.Order) OrderDTO {
	dto := OrderDTO{
		ID:            row.ID,
		OrderNumber:   row.OrderNumber,
		CustomerID:    row.CustomerID,
		CustomerName:  row.CustomerName,
		CustomerPhone: row.CustomerPhone,
		Area:          row.Area,
		Plot:          row.Plot,
		Street:        row.Street,
		House:         row.House,
		PaymentMethod: row.PaymentMethod,
		Subtotal:      row.Subtotal,
		DeliveryFee:   row.DeliveryFee,
		Total:         row.Total,
		Notes:         row.Notes,
		IsShipped:     row.IsShipped,
		IsDelivered:   row.IsDelivered,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	for _, item := range row.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Title:     item.Title,
			ImageURL:  item.ImageURL,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}
	return dto
}
