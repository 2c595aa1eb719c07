package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/essenzakw/essenza-backend/pkg/db/models"
	"github.com/essenzakw/essenza-backend/pkg/enums"
	"github.com/essenzakw/essenza-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:orders_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL UNIQUE,
  customer_id TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  area TEXT NOT NULL,
  plot TEXT NOT NULL,
  street TEXT NOT NULL,
  house TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  delivery_fee TEXT NOT NULL,
  total TEXT NOT NULL,
  notes TEXT,
  is_shipped INTEGER NOT NULL DEFAULT 0,
  is_delivered INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  title TEXT NOT NULL,
  image_url TEXT NOT NULL,
  unit_price TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  line_total TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func createOrder(t *testing.T, db *gorm.DB, number int64, customerID uuid.UUID, created time.Time, shipped, delivered bool) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   number,
		CustomerID:    customerID,
		CustomerName:  "Test Customer",
		CustomerPhone: "+96550000000",
		Area:          "Salmiya",
		Plot:          "4",
		Street:        "12",
		House:         "8",
		PaymentMethod: enums.PaymentMethodCOD,
		Subtotal:      mustMoney(t, "25.500"),
		DeliveryFee:   mustMoney(t, "1.500"),
		Total:         mustMoney(t, "27"),
		IsShipped:     shipped,
		IsDelivered:   delivered,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, db.Omit("Items").Create(order).Error)

	item := &models.OrderItem{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Title:     "Oud Royale",
		ImageURL:  "https://cdn.essenza.test/p.jpg",
		UnitPrice: mustMoney(t, "25.500"),
		Quantity:  1,
		LineTotal: mustMoney(t, "25.500"),
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(item).Error)
	return order
}

func TestRepositoryList_pagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	customer := uuid.New()
	now := time.Now().UTC()
	older := createOrder(t, db, 1001, customer, now.Add(-time.Hour), false, false)
	newer := createOrder(t, db, 1002, customer, now, false, false)

	first, cursor, err := repo.List(context.Background(), ListQuery{Pagination: pagination.Params{Limit: 1}})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, newer.OrderNumber, first[0].OrderNumber)
	assert.NotEmpty(t, cursor)

	second, cursor, err := repo.List(context.Background(), ListQuery{Pagination: pagination.Params{Limit: 1, Cursor: cursor}})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, older.OrderNumber, second[0].OrderNumber)
	assert.Empty(t, cursor)
}

func TestRepositoryList_statusFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	customer := uuid.New()
	now := time.Now().UTC()
	pending := createOrder(t, db, 2001, customer, now, false, false)
	shipped := createOrder(t, db, 2002, customer, now.Add(-time.Minute), true, false)
	delivered := createOrder(t, db, 2003, customer, now.Add(-2*time.Minute), true, true)

	cases := []struct {
		status StatusFilter
		want   int64
	}{
		{StatusPending, pending.OrderNumber},
		{StatusShipped, shipped.OrderNumber},
		{StatusDelivered, delivered.OrderNumber},
	}
	for _, tc := range cases {
		rows, _, err := repo.List(context.Background(), ListQuery{
			Pagination: pagination.Params{Limit: 10},
			Filters:    ListFilters{Status: tc.status},
		})
		require.NoError(t, err)
		require.Len(t, rows, 1, "status %q", tc.status)
		assert.Equal(t, tc.want, rows[0].OrderNumber)
	}

	all, _, err := repo.List(context.Background(), ListQuery{Pagination: pagination.Params{Limit: 10}})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepositoryList_customerFilter(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	target, other := uuid.New(), uuid.New()
	now := time.Now().UTC()
	mine := createOrder(t, db, 3001, target, now, false, false)
	createOrder(t, db, 3002, other, now.Add(-time.Minute), false, false)

	rows, _, err := repo.List(context.Background(), ListQuery{
		Pagination: pagination.Params{Limit: 10},
		Filters:    ListFilters{CustomerID: target},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.OrderNumber, rows[0].OrderNumber)
}

func TestRepositoryCountPending(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	customer := uuid.New()
	now := time.Now().UTC()
	createOrder(t, db, 4001, customer, now, false, false)
	createOrder(t, db, 4002, customer, now.Add(-time.Minute), false, false)
	createOrder(t, db, 4003, customer, now.Add(-2*time.Minute), true, false)
	createOrder(t, db, 4004, customer, now.Add(-3*time.Minute), true, true)

	count, err := repo.CountPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepositoryDeleteRemovesItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := createOrder(t, db, 5001, uuid.New(), time.Now().UTC(), false, false)
	require.NoError(t, repo.Delete(context.Background(), order.ID))

	gone, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)
}
