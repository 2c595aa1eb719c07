package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/essenzakw/essenza-backend/pkg/types"
)

// OrderItem captures the price snapshot of each line within an order.
type OrderItem struct {
	ID        uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID   `gorm:"column:order_id;type:uuid;not null"`
	ProductID *uuid.UUID  `gorm:"column:product_id;type:uuid"`
	Title     string      `gorm:"column:title;not null"`
	ImageURL  string      `gorm:"column:image_url;not null"`
	UnitPrice types.Money `gorm:"column:unit_price;type:numeric(10,3);not null"`
	Quantity  int         `gorm:"column:quantity;not null"`
	LineTotal types.Money `gorm:"column:line_total;type:numeric(10,3);not null"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
