package customers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/essenzakw/essenza-backend/pkg/db/models"
	"github.com/essenzakw/essenza-backend/pkg/logger"
	"github.com/essenzakw/essenza-backend/pkg/pagination"
)

func setupCustomersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:customers_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	customers := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  name TEXT NOT NULL,
  phone TEXT NOT NULL UNIQUE,
  area TEXT NOT NULL,
  plot TEXT NOT NULL,
  street TEXT NOT NULL,
  house TEXT NOT NULL,
  order_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(customers).Error)
	return db
}

func createCustomer(t *testing.T, db *gorm.DB, name, phone string, created time.Time) *models.Customer {
	t.Helper()

	customer := &models.Customer{
		ID:        uuid.New(),
		Name:      name,
		Phone:     phone,
		Area:      "Salmiya",
		Plot:      "4",
		Street:    "12",
		House:     "8",
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func TestRepositoryList_pagination(t *testing.T) {
	db := setupCustomersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	older := createCustomer(t, db, "Fatima", "+96550000001", now.Add(-time.Hour))
	newer := createCustomer(t, db, "Noura", "+96550000002", now)

	first, cursor, err := repo.List(context.Background(), ListQuery{Pagination: pagination.Params{Limit: 1}})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, newer.ID, first[0].ID)
	assert.NotEmpty(t, cursor)

	second, cursor, err := repo.List(context.Background(), ListQuery{Pagination: pagination.Params{Limit: 1, Cursor: cursor}})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, older.ID, second[0].ID)
	assert.Empty(t, cursor)
}

func TestRepositoryList_search(t *testing.T) {
	db := setupCustomersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	byName := createCustomer(t, db, "Abdullah", "+96550000003", now)
	byPhone := createCustomer(t, db, "Mariam", "+96551234567", now.Add(-time.Minute))

	rows, _, err := repo.List(context.Background(), ListQuery{
		Pagination: pagination.Params{Limit: 10},
		Filters:    ListFilters{Query: "abdul"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, byName.ID, rows[0].ID)

	rows, _, err = repo.List(context.Background(), ListQuery{
		Pagination: pagination.Params{Limit: 10},
		Filters:    ListFilters{Query: "51234"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, byPhone.ID, rows[0].ID)
}

func TestRepositoryIncrementOrderCount(t *testing.T) {
	db := setupCustomersTestDB(t)
	repo := NewRepository(db)

	customer := createCustomer(t, db, "Hessa", "+96550000004", time.Now().UTC())
	require.NoError(t, repo.IncrementOrderCount(context.Background(), customer.ID))
	require.NoError(t, repo.IncrementOrderCount(context.Background(), customer.ID))

	reloaded, err := repo.GetByID(context.Background(), customer.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, 2, reloaded.OrderCount)
}

func TestUpsertByPhoneAgainstDB(t *testing.T) {
	db := setupCustomersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	require.NoError(t, err)

	ctx := context.Background()
	input := UpsertInput{
		Name:   "Dana",
		Phone:  "+96550000005",
		Area:   "Hawally",
		Plot:   "2",
		Street: "7",
		House:  "14",
	}

	_, err = svc.UpsertByPhone(ctx, nil, input)
	require.NoError(t, err)

	created, err := repo.GetByPhone(ctx, input.Phone)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Dana", created.Name)
	assert.Equal(t, "Hawally", created.Area)

	input.Name = "Dana A."
	input.Area = "Salwa"
	input.House = "3"
	_, err = svc.UpsertByPhone(ctx, nil, input)
	require.NoError(t, err)

	refreshed, err := repo.GetByPhone(ctx, input.Phone)
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	assert.Equal(t, created.ID, refreshed.ID)
	assert.Equal(t, "Dana A.", refreshed.Name)
	assert.Equal(t, "Salwa", refreshed.Area)
	assert.Equal(t, "3", refreshed.House)

	var count int64
	require.NoError(t, db.Model(&models.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
