package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essenzakw/essenza-backend/pkg/db/models"
	pkgerrors "github.com/essenzakw/essenza-backend/pkg/errors"
	"github.com/essenzakw/essenza-backend/pkg/logger"
)

type customerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	IncrementOrderCount(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query ListQuery) ([]models.Customer, string, error)
}

// Service exposes customer operations for checkout and the dashboard.
type Service interface {
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)

	// UpsertByPhone finds the customer for the given phone and refreshes
	// the name and address, or creates a new record. Runs on the provided
	// transaction when tx is non-nil.
	UpsertByPhone(ctx context.Context, tx *gorm.DB, input UpsertInput) (*models.Customer, error)

	// RecordOrder bumps the customer's order count inside the checkout
	// transaction.
	RecordOrder(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type service struct {
	repo   customerRepository
	txRepo func(tx *gorm.DB) customerRepository
	logg   *logger.Logger
}

// NewService builds a customers service backed by the provided repository.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		txRepo: func(tx *gorm.DB) customerRepository { return repo.WithTx(tx) },
		logg:   logg,
	}, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing customers")
	}
	dtos := make([]CustomerDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toDTO(row))
	}
	return &ListResult{Customers: dtos, NextCursor: nextCursor}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading customer")
	}
	if customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	dto := toDTO(*customer)
	return &dto, nil
}

func (s *service) UpsertByPhone(ctx context.Context, tx *gorm.DB, input UpsertInput) (*models.Customer, error) {
	if err := validateUpsertInput(input); err != nil {
		return nil, err
	}
	repo := s.repo
	if tx != nil {
		repo = s.txRepo(tx)
	}

	existing, err := repo.GetByPhone(ctx, input.Phone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up customer by phone")
	}

	if existing == nil {
		created, err := repo.Create(ctx, &models.Customer{
			Name:   input.Name,
			Phone:  input.Phone,
			Area:   input.Area,
			Plot:   input.Plot,
			Street: input.Street,
			House:  input.House,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating customer")
		}
		logCtx := s.logg.WithField(ctx, "customer_id", created.ID.String())
		s.logg.Info(logCtx, "customer created")
		return created, nil
	}

	existing.Name = input.Name
	existing.Area = input.Area
	existing.Plot = input.Plot
	existing.Street = input.Street
	existing.House = input.House
	updated, err := repo.Update(ctx, existing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating customer")
	}
	return updated, nil
}

func (s *service) RecordOrder(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	repo := s.repo
	if tx != nil {
		repo = s.txRepo(tx)
	}
	if err := repo.IncrementOrderCount(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "incrementing order count")
	}
	return nil
}

func validateUpsertInput(input UpsertInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer phone is required")
	}
	if strings.TrimSpace(input.Area) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery area is required")
	}
	return nil
}
