package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/essenzakw/essenza-backend/pkg/db/models"
	"github.com/essenzakw/essenza-backend/pkg/enums"
	pkgerrors "github.com/essenzakw/essenza-backend/pkg/errors"
	"github.com/essenzakw/essenza-backend/pkg/logger"
	"github.com/essenzakw/essenza-backend/pkg/outbox"
	"github.com/essenzakw/essenza-backend/pkg/types"
)

type productRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query ListQuery) ([]models.Product, string, error)
	SetStock(ctx context.Context, id uuid.UUID, inStock bool) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes catalog operations for the storefront and the dashboard.
type Service interface {
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStock(ctx context.Context, id uuid.UUID, inStock bool) (*ProductDTO, error)

	// StockByIDs returns availability keyed by product id. Products absent
	// from the catalog are simply missing from the map.
	StockByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

type service struct {
	repo   productRepository
	txRepo func(tx *gorm.DB) productRepository
	tx     txRunner
	events eventEmitter
	logg   *logger.Logger
}

// NewService builds a catalog service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, events eventEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		txRepo: func(tx *gorm.DB) productRepository { return repo.WithTx(tx) },
		tx:     tx,
		events: events,
		logg:   logg,
	}, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}
	dtos := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toDTO(row))
	}
	return &ListResult{Products: dtos, NextCursor: nextCursor}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	dto := toDTO(*product)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateProductInput(input.Title, input.ImageURL, input.Price, input.SalePrice); err != nil {
		return nil, err
	}

	row := &models.Product{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Brand:       input.Brand,
		Price:       input.Price,
		SalePrice:   input.SalePrice,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Accords:     pq.StringArray(input.Accords),
		SizeML:      input.SizeML,
		InStock:     input.InStock,
		IsFeatured:  input.IsFeatured,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating product")
	}
	dto := toDTO(*created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := validateProductInput(input.Title, input.ImageURL, input.Price, input.SalePrice); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	stockChanged := product.InStock != input.InStock

	product.Title = strings.TrimSpace(input.Title)
	product.Description = input.Description
	product.Brand = input.Brand
	product.Price = input.Price
	product.SalePrice = input.SalePrice
	product.ImageURL = strings.TrimSpace(input.ImageURL)
	product.Accords = pq.StringArray(input.Accords)
	product.SizeML = input.SizeML
	product.InStock = input.InStock
	product.IsFeatured = input.IsFeatured

	var updated *models.Product
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.txRepo(tx)
		row, err := repo.Update(ctx, product)
		if err != nil {
			return err
		}
		updated = row
		if stockChanged {
			return s.emitStockChanged(ctx, tx, product.ID, input.InStock)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating product")
	}

	dto := toDTO(*updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	// Removing a listing behaves like stock running out for any open cart.
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.txRepo(tx)
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.emitStockChanged(ctx, tx, id, false)
	})
}

func (s *service) UpdateStock(ctx context.Context, id uuid.UUID, inStock bool) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if product.InStock == inStock {
		dto := toDTO(*product)
		return &dto, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.txRepo(tx)
		if err := repo.SetStock(ctx, id, inStock); err != nil {
			return err
		}
		return s.emitStockChanged(ctx, tx, id, inStock)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating product stock")
	}

	product.InStock = inStock
	dto := toDTO(*product)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"product_id": id.String(),
		"in_stock":   inStock,
	})
	s.logg.Info(logCtx, "product stock updated")

	return &dto, nil
}

func (s *service) StockByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading products")
	}
	stock := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		stock[row.ID] = row.InStock
	}
	return stock, nil
}

func (s *service) emitStockChanged(ctx context.Context, tx *gorm.DB, productID uuid.UUID, inStock bool) error {
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.OutboxEventProductStockChanged,
		AggregateType: enums.AggregateProduct,
		AggregateID:   productID,
		Version:       1,
		Data: map[string]any{
			"productId": productID,
			"inStock":   inStock,
		},
	})
}

func validateProductInput(title, imageURL string, price types.Money, salePrice *types.Money) error {
	if strings.TrimSpace(title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product title is required")
	}
	if strings.TrimSpace(imageURL) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product image url is required")
	}
	if price.IsNegative() || price.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price must be positive")
	}
	if salePrice != nil && (salePrice.IsNegative() || salePrice.IsZero()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale price must be positive")
	}
	return nil
}
