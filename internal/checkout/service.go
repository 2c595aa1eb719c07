package checkout

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essenzakw/essenza-backend/internal/cart"
	"github.com/essenzakw/essenza-backend/internal/customers"
	"github.com/essenzakw/essenza-backend/internal/orders"
	"github.com/essenzakw/essenza-backend/pkg/config"
	"github.com/essenzakw/essenza-backend/pkg/db/models"
	pkgerrors "github.com/essenzakw/essenza-backend/pkg/errors"
	"github.com/essenzakw/essenza-backend/pkg/logger"
	"github.com/essenzakw/essenza-backend/pkg/types"
)

// Kuwaiti mobile numbers are 8 digits starting with 5, 6, or 9.
var kuwaitPhonePattern = regexp.MustCompile(`^[569][0-9]{7}$`)

type cartStore interface {
	Load(ctx context.Context, token string) (*cart.Cart, error)
	Save(ctx context.Context, token string, c *cart.Cart) error
	Delete(ctx context.Context, token string) error
}

type productCatalog interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type customerService interface {
	UpsertByPhone(ctx context.Context, tx *gorm.DB, input customers.UpsertInput) (*models.Customer, error)
	RecordOrder(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type orderService interface {
	Create(ctx context.Context, tx *gorm.DB, input orders.CreateOrderInput) (*models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service turns a reconciled cart into a placed order.
type Service interface {
	Submit(ctx context.Context, token string, req SubmitRequest) (*SubmitResponse, error)
}

type service struct {
	store       cartStore
	catalog     productCatalog
	customers   customerService
	orders      orderService
	tx          txRunner
	deliveryFee types.Money
	currency    string
	logg        *logger.Logger
}

// ServiceParams bundles the dependencies required to build a checkout service.
type ServiceParams struct {
	CartStore       cartStore
	Catalog         productCatalog
	CustomerService customerService
	OrderService    orderService
	TxRunner        txRunner
	Checkout        config.CheckoutConfig
	Logger          *logger.Logger
}

// NewService constructs a checkout service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CartStore == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if params.CustomerService == nil {
		return nil, fmt.Errorf("customer service is required")
	}
	if params.OrderService == nil {
		return nil, fmt.Errorf("order service is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	deliveryFee, err := types.MoneyFromString(params.Checkout.DeliveryFee)
	if err != nil {
		return nil, fmt.Errorf("invalid delivery fee %q: %w", params.Checkout.DeliveryFee, err)
	}
	if deliveryFee.IsNegative() {
		return nil, fmt.Errorf("delivery fee must not be negative")
	}
	return &service{
		store:       params.CartStore,
		catalog:     params.Catalog,
		customers:   params.CustomerService,
		orders:      params.OrderService,
		tx:          params.TxRunner,
		deliveryFee: deliveryFee,
		currency:    params.Checkout.Currency,
		logg:        params.Logger,
	}, nil
}

func (s *service) Submit(ctx context.Context, token string, req SubmitRequest) (*SubmitResponse, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	c, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if c.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	products, err := s.freshProducts(ctx, c)
	if err != nil {
		return nil, err
	}

	inStock := make(map[uuid.UUID]bool, len(products))
	for id, p := range products {
		inStock[id] = p.InStock
	}
	removed := c.Reconcile(inStock)
	if len(removed) > 0 {
		if err := s.store.Save(ctx, token, c); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving reconciled cart")
		}
		details := ConflictDetails{Cart: c}
		for _, line := range removed {
			details.RemovedItems = append(details.RemovedItems, RemovedItem{
				ProductID: line.ProductID,
				Title:     line.Title,
				Quantity:  line.Quantity,
			})
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "some items are no longer available").WithDetails(details)
	}
	if c.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	// Orders always charge the catalog price at submit time, not the price
	// captured when the line was added.
	subtotal := types.MoneyZero()
	items := make([]orders.CreateOrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		product := products[line.ProductID]
		unitPrice := product.EffectivePrice()
		subtotal = subtotal.Add(unitPrice.MulInt(int64(line.Quantity)))
		items = append(items, orders.CreateOrderItem{
			ProductID: product.ID,
			Title:     product.Title,
			ImageURL:  product.ImageURL,
			UnitPrice: unitPrice,
			Quantity:  line.Quantity,
		})
	}
	total := subtotal.Add(s.deliveryFee)

	var placed *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		customer, err := s.customers.UpsertByPhone(ctx, tx, customers.UpsertInput{
			Name:   req.Name,
			Phone:  req.Phone,
			Area:   req.Area,
			Plot:   req.Plot,
			Street: req.Street,
			House:  req.House,
		})
		if err != nil {
			return err
		}

		placed, err = s.orders.Create(ctx, tx, orders.CreateOrderInput{
			Customer:      customer,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
			Subtotal:      subtotal,
			DeliveryFee:   s.deliveryFee,
			Total:         total,
			Items:         items,
		})
		if err != nil {
			return err
		}

		return s.customers.RecordOrder(ctx, tx, customer.ID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, token); err != nil {
		// The order is committed; a stale cart is recoverable so log and
		// return the order anyway.
		s.logg.Error(ctx, "failed to clear cart after checkout", err)
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":     placed.ID.String(),
		"order_number": placed.OrderNumber,
		"total":        total.String(),
	})
	s.logg.Info(logCtx, "checkout completed")

	return &SubmitResponse{
		OrderID:     placed.ID,
		OrderNumber: placed.OrderNumber,
		Subtotal:    subtotal,
		DeliveryFee: s.deliveryFee,
		Total:       total,
		Currency:    s.currency,
	}, nil
}

func (s *service) freshProducts(ctx context.Context, c *cart.Cart) (map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, line := range c.Items {
		ids = append(ids, line.ProductID)
	}
	rows, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading products")
	}
	products := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		products[row.ID] = row
	}
	return products, nil
}

func validateRequest(req SubmitRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !kuwaitPhonePattern.MatchString(strings.TrimSpace(req.Phone)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone must be a valid Kuwaiti mobile number")
	}
	if strings.TrimSpace(req.Area) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "area is required")
	}
	if !req.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}
	return nil
}
