package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/essenzakw/essenza-backend/pkg/types"
)

// Product represents a fragrance listed in the catalog.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string         `gorm:"column:title;not null"`
	Description *string        `gorm:"column:description"`
	Brand       *string        `gorm:"column:brand"`
	Price       types.Money    `gorm:"column:price;type:numeric(10,3);not null"`
	SalePrice   *types.Money   `gorm:"column:sale_price;type:numeric(10,3)"`
	ImageURL    string         `gorm:"column:image_url;not null"`
	Accords     pq.StringArray `gorm:"column:accords;type:text[];not null;default:ARRAY[]::text[]"`
	SizeML      *int           `gorm:"column:size_ml"`
	InStock     bool           `gorm:"column:in_stock;not null;default:true"`
	IsFeatured  bool           `gorm:"column:is_featured;not null;default:false"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePrice is the unit price a buyer pays: the sale price when one is
// set and lower than the list price, the list price otherwise.
func (p Product) EffectivePrice() types.Money {
	if p.SalePrice != nil && p.SalePrice.LessThan(p.Price) {
		return *p.SalePrice
	}
	return p.Price
}
