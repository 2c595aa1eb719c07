package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/essenzakw/essenza-backend/pkg/enums"
	"github.com/essenzakw/essenza-backend/pkg/types"
)

// Order is a placed order with a snapshot of the customer's delivery details.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   int64               `gorm:"column:order_number;not null;uniqueIndex;default:nextval('order_number_seq')"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	CustomerName  string              `gorm:"column:customer_name;not null"`
	CustomerPhone string              `gorm:"column:customer_phone;not null"`
	Area          string              `gorm:"column:area;not null"`
	Plot          string              `gorm:"column:plot;not null"`
	Street        string              `gorm:"column:street;not null"`
	House         string              `gorm:"column:house;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Subtotal      types.Money         `gorm:"column:subtotal;type:numeric(10,3);not null"`
	DeliveryFee   types.Money         `gorm:"column:delivery_fee;type:numeric(10,3);not null"`
	Total         types.Money         `gorm:"column:total;type:numeric(10,3);not null"`
	Notes         *string             `gorm:"column:notes"`
	IsShipped     bool                `gorm:"column:is_shipped;not null;default:false"`
	IsDelivered   bool                `gorm:"column:is_delivered;not null;default:false"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
