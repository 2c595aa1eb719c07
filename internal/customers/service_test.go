package customers

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essenzakw/essenza-backend/pkg/db/models"
	pkgerrors "github.com/essenzakw/essenza-backend/pkg/errors"
	"github.com/essenzakw/essenza-backend/pkg/logger"
)

type fakeRepo struct {
	byPhone map[string]*models.Customer
	bumped  []uuid.UUID
	updated []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byPhone: map[string]*models.Customer{}}
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	for _, row := range f.byPhone {
		if row.ID == id {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	if row, ok := f.byPhone[phone]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeRepo) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	customer.ID = uuid.New()
	f.byPhone[customer.Phone] = customer
	return customer, nil
}

func (f *fakeRepo) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	f.byPhone[customer.Phone] = customer
	f.updated = append(f.updated, customer.ID)
	return customer, nil
}

func (f *fakeRepo) IncrementOrderCount(ctx context.Context, id uuid.UUID) error {
	f.bumped = append(f.bumped, id)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, query ListQuery) ([]models.Customer, string, error) {
	out := []models.Customer{}
	for _, row := range f.byPhone {
		out = append(out, *row)
	}
	return out, "", nil
}

func testService(repo *fakeRepo) *service {
	return &service{
		repo:   repo,
		txRepo: func(tx *gorm.DB) customerRepository { return repo },
		logg:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}
}

func TestUpsertByPhoneCreatesNewCustomer(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(repo)

	customer, err := svc.UpsertByPhone(context.Background(), nil, UpsertInput{
		Name:   "Mariam",
		Phone:  "99887766",
		Area:   "Salmiya",
		Plot:   "4",
		Street: "12",
		House:  "8",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if customer.ID == uuid.Nil {
		t.Fatal("expected customer to get an id")
	}
	if stored := repo.byPhone["99887766"]; stored == nil || stored.Area != "Salmiya" {
		t.Fatal("expected customer stored under phone key")
	}
}

func TestUpsertByPhoneRefreshesExistingAddress(t *testing.T) {
	repo := newFakeRepo()
	existing := &models.Customer{
		ID:         uuid.New(),
		Name:       "Mariam",
		Phone:      "99887766",
		Area:       "Salmiya",
		Plot:       "4",
		Street:     "12",
		House:      "8",
		OrderCount: 3,
	}
	repo.byPhone[existing.Phone] = existing
	svc := testService(repo)

	customer, err := svc.UpsertByPhone(context.Background(), nil, UpsertInput{
		Name:   "Mariam A.",
		Phone:  "99887766",
		Area:   "Hawally",
		Plot:   "2",
		Street: "5",
		House:  "19",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if customer.ID != existing.ID {
		t.Fatal("expected the same customer record")
	}
	if customer.Area != "Hawally" || customer.Name != "Mariam A." {
		t.Fatalf("expected refreshed details, got %+v", customer)
	}
	if customer.OrderCount != 3 {
		t.Fatalf("order count must survive the upsert, got %d", customer.OrderCount)
	}
}

func TestUpsertByPhoneValidation(t *testing.T) {
	svc := testService(newFakeRepo())

	cases := []struct {
		name  string
		input UpsertInput
	}{
		{"missing name", UpsertInput{Phone: "99887766", Area: "Salmiya"}},
		{"missing phone", UpsertInput{Name: "Mariam", Area: "Salmiya"}},
		{"missing area", UpsertInput{Name: "Mariam", Phone: "99887766"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpsertByPhone(context.Background(), nil, tc.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation code, got %v", err)
			}
		})
	}
}

func TestRecordOrder(t *testing.T) {
	repo := newFakeRepo()
	svc := testService(repo)

	id := uuid.New()
	if err := svc.RecordOrder(context.Background(), nil, id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.bumped) != 1 || repo.bumped[0] != id {
		t.Fatal("expected order count increment for customer")
	}
}

func TestGetUnknownCustomer(t *testing.T) {
	svc := testService(newFakeRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error for unknown customer")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}
