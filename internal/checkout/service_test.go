package checkout

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essenzakw/essenza-backend/internal/cart"
	"github.com/essenzakw/essenza-backend/internal/customers"
	"github.com/essenzakw/essenza-backend/internal/orders"
	"github.com/essenzakw/essenza-backend/pkg/config"
	"github.com/essenzakw/essenza-backend/pkg/db/models"
	"github.com/essenzakw/essenza-backend/pkg/enums"
	pkgerrors "github.com/essenzakw/essenza-backend/pkg/errors"
	"github.com/essenzakw/essenza-backend/pkg/logger"
	"github.com/essenzakw/essenza-backend/pkg/types"
)

type fakeCartStore struct {
	carts   map[string]*cart.Cart
	deleted []string
	saved   int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[string]*cart.Cart{}}
}

func (f *fakeCartStore) Load(ctx context.Context, token string) (*cart.Cart, error) {
	if c, ok := f.carts[token]; ok {
		return c, nil
	}
	return cart.New(), nil
}

func (f *fakeCartStore) Save(ctx context.Context, token string, c *cart.Cart) error {
	f.carts[token] = c
	f.saved++
	return nil
}

func (f *fakeCartStore) Delete(ctx context.Context, token string) error {
	delete(f.carts, token)
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeCatalog struct {
	rows map[uuid.UUID]models.Product
}

func (f *fakeCatalog) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	out := []models.Product{}
	for _, id := range ids {
		if row, ok := f.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeCustomerService struct {
	customer *models.Customer
	recorded []uuid.UUID
}

func (f *fakeCustomerService) UpsertByPhone(ctx context.Context, tx *gorm.DB, input customers.UpsertInput) (*models.Customer, error) {
	f.customer = &models.Customer{
		ID:     uuid.New(),
		Name:   input.Name,
		Phone:  input.Phone,
		Area:   input.Area,
		Plot:   input.Plot,
		Street: input.Street,
		House:  input.House,
	}
	return f.customer, nil
}

func (f *fakeCustomerService) RecordOrder(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	f.recorded = append(f.recorded, id)
	return nil
}

type fakeOrderService struct {
	input *orders.CreateOrderInput
}

func (f *fakeOrderService) Create(ctx context.Context, tx *gorm.DB, input orders.CreateOrderInput) (*models.Order, error) {
	f.input = &input
	return &models.Order{
		ID:          uuid.New(),
		OrderNumber: 1001,
		CustomerID:  input.Customer.ID,
		Subtotal:    input.Subtotal,
		DeliveryFee: input.DeliveryFee,
		Total:       input.Total,
	}, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fixture struct {
	svc       Service
	store     *fakeCartStore
	catalog   *fakeCatalog
	customers *fakeCustomerService
	orders    *fakeOrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeCartStore()
	catalog := &fakeCatalog{rows: map[uuid.UUID]models.Product{}}
	customerSvc := &fakeCustomerService{}
	orderSvc := &fakeOrderService{}
	svc, err := NewService(ServiceParams{
		CartStore:       store,
		Catalog:         catalog,
		CustomerService: customerSvc,
		OrderService:    orderSvc,
		TxRunner:        fakeTxRunner{},
		Checkout:        config.CheckoutConfig{DeliveryFee: "2.000", Currency: "KWD"},
		Logger:          logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return &fixture{svc: svc, store: store, catalog: catalog, customers: customerSvc, orders: orderSvc}
}

func mustMoney(t *testing.T, s string) types.Money {
	t.Helper()
	m, err := types.MoneyFromString(s)
	if err != nil {
		t.Fatalf("parse money %q: %v", s, err)
	}
	return m
}

func (f *fixture) addProduct(t *testing.T, price string, inStock bool) models.Product {
	t.Helper()
	product := models.Product{
		ID:       uuid.New(),
		Title:    "Oud Royal",
		Price:    mustMoney(t, price),
		ImageURL: "https://cdn.example.com/oud.jpg",
		InStock:  inStock,
	}
	f.catalog.rows[product.ID] = product
	return product
}

func (f *fixture) seedCart(t *testing.T, token string, product models.Product, quantity int) {
	t.Helper()
	c := cart.New()
	err := c.Add(cart.ProductSnapshot{
		ID:       product.ID,
		Title:    product.Title,
		Price:    product.Price,
		ImageURL: product.ImageURL,
		InStock:  true,
	}, quantity)
	if err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	f.store.carts[token] = c
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		Name:          "Mariam",
		Phone:         "99887766",
		Area:          "Salmiya",
		Plot:          "4",
		Street:        "12",
		House:         "8",
		PaymentMethod: enums.PaymentMethodCOD,
	}
}

func TestSubmitPlacesOrder(t *testing.T) {
	f := newFixture(t)
	product := f.addProduct(t, "12.750", true)
	f.seedCart(t, "tok-1", product, 2)

	resp, err := f.svc.Submit(context.Background(), "tok-1", validRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := resp.Subtotal.String(); got != "25.5" {
		t.Fatalf("expected subtotal 25.5, got %s", got)
	}
	if got := resp.Total.String(); got != "27.5" {
		t.Fatalf("expected total 27.5, got %s", got)
	}
	if resp.Currency != "KWD" {
		t.Fatalf("expected KWD, got %s", resp.Currency)
	}
	if len(f.store.deleted) != 1 || f.store.deleted[0] != "tok-1" {
		t.Fatal("expected cart cleared after checkout")
	}
	if f.customers.customer == nil || len(f.customers.recorded) != 1 {
		t.Fatal("expected customer upsert and order count bump")
	}
	if f.orders.input == nil || f.orders.input.Customer.Phone != "99887766" {
		t.Fatal("expected order created for the customer")
	}
}

func TestSubmitChargesCurrentCatalogPrice(t *testing.T) {
	f := newFixture(t)
	product := f.addProduct(t, "10.000", true)
	f.seedCart(t, "tok-1", product, 1)

	// Price dropped after the line was added. The order charges the new one.
	discounted := mustMoney(t, "8.000")
	product.SalePrice = &discounted
	f.catalog.rows[product.ID] = product

	resp, err := f.svc.Submit(context.Background(), "tok-1", validRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := resp.Subtotal.String(); got != "8" {
		t.Fatalf("expected subtotal 8, got %s", got)
	}
	if got := f.orders.input.Items[0].UnitPrice.String(); got != "8" {
		t.Fatalf("expected unit price 8, got %s", got)
	}
}

func TestSubmitConflictWhenStockRanOut(t *testing.T) {
	f := newFixture(t)
	gone := f.addProduct(t, "10.000", false)
	kept := f.addProduct(t, "5.000", true)
	c := cart.New()
	for _, p := range []models.Product{gone, kept} {
		err := c.Add(cart.ProductSnapshot{
			ID:       p.ID,
			Title:    p.Title,
			Price:    p.Price,
			ImageURL: p.ImageURL,
			InStock:  true,
		}, 1)
		if err != nil {
			t.Fatalf("seed cart: %v", err)
		}
	}
	f.store.carts["tok-1"] = c

	_, err := f.svc.Submit(context.Background(), "tok-1", validRequest())
	if err == nil {
		t.Fatal("expected conflict")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
	details, ok := typed.Details().(ConflictDetails)
	if !ok {
		t.Fatalf("expected conflict details, got %T", typed.Details())
	}
	if len(details.RemovedItems) != 1 || details.RemovedItems[0].ProductID != gone.ID {
		t.Fatalf("expected the out of stock line in details, got %+v", details.RemovedItems)
	}
	if f.store.saved != 1 {
		t.Fatal("expected the reconciled cart to be saved")
	}
	if len(details.Cart.Items) != 1 {
		t.Fatalf("expected 1 line left in cart, got %d", len(details.Cart.Items))
	}
	if f.orders.input != nil {
		t.Fatal("expected no order to be created")
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), "tok-1", validRequest())
	if err == nil {
		t.Fatal("expected error for empty cart")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestSubmitPhoneValidation(t *testing.T) {
	f := newFixture(t)
	product := f.addProduct(t, "10.000", true)
	f.seedCart(t, "tok-1", product, 1)

	cases := []struct {
		name  string
		phone string
	}{
		{"too short", "9988776"},
		{"too long", "998877665"},
		{"bad prefix", "19887766"},
		{"letters", "99a87766"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			req.Phone = tc.phone
			_, err := f.svc.Submit(context.Background(), "tok-1", req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation code, got %v", err)
			}
		})
	}
}

func TestSubmitTrimsPhone(t *testing.T) {
	f := newFixture(t)
	product := f.addProduct(t, "10.000", true)
	f.seedCart(t, "tok-1", product, 1)

	req := validRequest()
	req.Phone = " 99887766 "
	if _, err := f.svc.Submit(context.Background(), "tok-1", req); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if f.customers.customer.Phone != "99887766" {
		t.Fatalf("expected trimmed phone, got %q", f.customers.customer.Phone)
	}
}
