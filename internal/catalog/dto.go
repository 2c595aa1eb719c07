package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/essenzakw/essenza-backend/pkg/db/models"
	"github.com/essenzakw/essenza-backend/pkg/pagination"
	"github.com/essenzakw/essenza-backend/pkg/types"
)

// CreateProductInput carries the fields accepted when listing a new fragrance.
type CreateProductInput struct {
	Title       string
	Description *string
	Brand       *string
	Price       types.Money
	SalePrice   *types.Money
	ImageURL    string
	Accords     []string
	SizeML      *int
	InStock     bool
	IsFeatured  bool
}

// UpdateProductInput mirrors CreateProductInput for full updates.
type UpdateProductInput struct {
	Title       string
	Description *string
	Brand       *string
	Price       types.Money
	SalePrice   *types.Money
	ImageURL    string
	Accords     []string
	SizeML      *int
	InStock     bool
	IsFeatured  bool
}

// ListFilters narrows product listings.
type ListFilters struct {
	Query        string
	InStockOnly  bool
	FeaturedOnly bool
}

// ListQuery couples filters with cursor pagination.
type ListQuery struct {
	Pagination pagination.Params
	Filters    ListFilters
}

// ListResult is one page of products plus the cursor for the next.
type ListResult struct {
	Products   []ProductDTO
	NextCursor string
}

// ProductDTO is the read shape returned to controllers.
type ProductDTO struct {
	ID             uuid.UUID    `json:"id"`
	Title          string       `json:"title"`
	Description    *string      `json:"description,omitempty"`
	Brand          *string      `json:"brand,omitempty"`
	Price          types.Money  `json:"price"`
	SalePrice      *types.Money `json:"sale_price,omitempty"`
	EffectivePrice types.Money  `json:"effective_price"`
	ImageURL       string       `json:"image_url"`
	Accords        []string     `json:"accords"`
	SizeML         *int         `json:"size_ml,omitempty"`
	InStock        bool         `json:"in_stock"`
	IsFeatured     bool         `json:"is_featured"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func toDTO(p models.Product) ProductDTO {
	accords := []string(p.Accords)
	if accords == nil {
		accords = []string{}
	}
	return ProductDTO{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Brand:          p.Brand,
		Price:          p.Price,
		SalePrice:      p.SalePrice,
		EffectivePrice: p.EffectivePrice(),
		ImageURL:       p.ImageURL,
		Accords:        accords,
		SizeML:         p.SizeML,
		InStock:        p.InStock,
		IsFeatured:     p.IsFeatured,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
