package checkout

import (
	"github.com/google/uuid"

	"github.com/essenzakw/essenza-backend/internal/cart"
	"github.com/essenzakw/essenza-backend/pkg/enums"
	"github.com/essenzakw/essenza-backend/pkg/types"
)

// SubmitRequest carries the delivery details and payment choice for an order.
type SubmitRequest struct {
	Name          string              `json:"name" validate:"required"`
	Phone         string              `json:"phone" validate:"required"`
	Area          string              `json:"area" validate:"required"`
	Plot          string              `json:"plot"`
	Street        string              `json:"street"`
	House         string              `json:"house"`
	PaymentMethod enums.PaymentMethod `json:"payment_method" validate:"required"`
	Notes         *string             `json:"notes,omitempty"`
}

// RemovedItem describes a cart line dropped during stock reconciliation.
type RemovedItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	Quantity  int       `json:"quantity"`
}

// ConflictDetails is attached to the conflict error when reconciliation
// changed the cart. The client re-renders the cart and asks the shopper to
// confirm before retrying.
type ConflictDetails struct {
	RemovedItems []RemovedItem `json:"removed_items"`
	Cart         *cart.Cart    `json:"cart"`
}

// SubmitResponse summarises the placed order.
type SubmitResponse struct {
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber int64       `json:"order_number"`
	Subtotal    types.Money `json:"subtotal"`
	DeliveryFee types.Money `json:"delivery_fee"`
	Total       types.Money `json:"total"`
	Currency    string      `json:"currency"`
}
