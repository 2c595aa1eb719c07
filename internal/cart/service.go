package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/essenzakw/essenza-backend/pkg/db/models"
	pkgerrors "github.com/essenzakw/essenza-backend/pkg/errors"
	"github.com/essenzakw/essenza-backend/pkg/logger"
)

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Service exposes the cart operations keyed by an opaque cart token.
type Service interface {
	Get(ctx context.Context, token string) (*Cart, error)
	Add(ctx context.Context, token string, productID uuid.UUID, quantity int) (*Cart, error)
	UpdateQuantity(ctx context.Context, token string, productID uuid.UUID, quantity int) (*Cart, error)
	Remove(ctx context.Context, token string, productID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, token string) (*Cart, error)
	SetStock(ctx context.Context, token string, productID uuid.UUID, inStock bool) (*Cart, error)
	Reconcile(ctx context.Context, token string) (*Cart, []Line, error)
}

type service struct {
	store    *Store
	products productLoader
	logg     *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(store *Store, products productLoader, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, products: products, logg: logg}, nil
}

func validateToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	return nil
}

func (s *service) Get(ctx context.Context, token string) (*Cart, error) {
	if err := validateToken(token); err != nil {
		return nil, err
	}
	c, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	return c, nil
}

func (s *service) Add(ctx context.Context, token string, productID uuid.UUID, quantity int) (*Cart, error) {
	if err := validateToken(token); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	c, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	snapshot := ProductSnapshot{
		ID:        product.ID,
		Title:     product.Title,
		Price:     product.Price,
		SalePrice: product.SalePrice,
		ImageURL:  product.ImageURL,
		InStock:   product.InStock,
	}
	if err := c.Add(snapshot, quantity); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is not available")
		}
		return nil, err
	}

	if err := s.save(ctx, token, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) UpdateQuantity(ctx context.Context, token string, productID uuid.UUID, quantity int) (*Cart, error) {
	if err := validateToken(token); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	c.UpdateQuantity(productID, quantity)
	if err := s.save(ctx, token, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Remove(ctx context.Context, token string, productID uuid.UUID) (*Cart, error) {
	if err := validateToken(token); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	c.Remove(productID)
	if err := s.save(ctx, token, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Clear(ctx context.Context, token string) (*Cart, error) {
	if err := validateToken(token); err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, token); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return New(), nil
}

func (s *service) SetStock(ctx context.Context, token string, productID uuid.UUID, inStock bool) (*Cart, error) {
	if err := validateToken(token); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	c.SetStock(productID, inStock)
	if err := s.save(ctx, token, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Reconcile revalidates every line against current catalog stock and drops
// the ones that are unavailable or gone, recomputing totals from scratch.
func (s *service) Reconcile(ctx context.Context, token string) (*Cart, []Line, error) {
	if err := validateToken(token); err != nil {
		return nil, nil, err
	}
	c, err := s.Get(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if c.IsEmpty() {
		return c, nil, nil
	}

	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, line := range c.Items {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading products")
	}
	inStock := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		inStock[p.ID] = p.InStock
	}

	removed := c.Reconcile(inStock)
	if err := s.save(ctx, token, c); err != nil {
		return nil, nil, err
	}
	if len(removed) > 0 {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"cart_token":    token,
			"removed_lines": len(removed),
		})
		s.logg.Info(ctx, "cart reconciled")
	}
	return c, removed, nil
}

func (s *service) save(ctx context.Context, token string, c *Cart) error {
	if err := s.store.Save(ctx, token, c); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return nil
}
