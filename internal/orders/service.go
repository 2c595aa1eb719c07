package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essenzakw/essenza-backend/pkg/db/models"
	"github.com/essenzakw/essenza-backend/pkg/enums"
	pkgerrors "github.com/essenzakw/essenza-backend/pkg/errors"
	"github.com/essenzakw/essenza-backend/pkg/logger"
	"github.com/essenzakw/essenza-backend/pkg/outbox"
)

type orderRepository interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, query ListQuery) ([]models.Order, string, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes order operations for checkout and the dashboard.
type Service interface {
	// Create persists the order on the provided transaction and queues an
	// order.created event on the same transaction.
	Create(ctx context.Context, tx *gorm.DB, input CreateOrderInput) (*models.Order, error)

	List(ctx context.Context, query ListQuery) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) (*OrderDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo   orderRepository
	txRepo func(tx *gorm.DB) orderRepository
	tx     txRunner
	events eventEmitter
	logg   *logger.Logger
}

// NewService builds an orders service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, events eventEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
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
		txRepo: func(tx *gorm.DB) orderRepository { return repo.WithTx(tx) },
		tx:     tx,
		events: events,
		logg:   logg,
	}, nil
}

type orderCreatedData struct {
	OrderID       uuid.UUID `json:"orderId"`
	OrderNumber   int64     `json:"orderNumber"`
	CustomerID    uuid.UUID `json:"customerId"`
	PaymentMethod string    `json:"paymentMethod"`
	Total         string    `json:"total"`
	ItemCount     int       `json:"itemCount"`
}

func (s *service) Create(ctx context.Context, tx *gorm.DB, input CreateOrderInput) (*models.Order, error) {
	// The order row and its order.created event must commit together.
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order creation requires a transaction")
	}
	if input.Customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must have at least one item")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}

	order := &models.Order{
		CustomerID:    input.Customer.ID,
		CustomerName:  input.Customer.Name,
		CustomerPhone: input.Customer.Phone,
		Area:          input.Customer.Area,
		Plot:          input.Customer.Plot,
		Street:        input.Customer.Street,
		House:         input.Customer.House,
		PaymentMethod: input.PaymentMethod,
		Subtotal:      input.Subtotal,
		DeliveryFee:   input.DeliveryFee,
		Total:         input.Total,
		Notes:         input.Notes,
	}
	for _, item := range input.Items {
		productID := item.ProductID
		order.Items = append(order.Items, models.OrderItem{
			ProductID: &productID,
			Title:     item.Title,
			ImageURL:  item.ImageURL,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.UnitPrice.MulInt(int64(item.Quantity)),
		})
	}

	created, err := s.txRepo(tx).Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order")
	}

	err = s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.OutboxEventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   created.ID,
		Data: orderCreatedData{
			OrderID:       created.ID,
			OrderNumber:   created.OrderNumber,
			CustomerID:    created.CustomerID,
			PaymentMethod: created.PaymentMethod.String(),
			Total:         created.Total.String(),
			ItemCount:     len(created.Items),
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queueing order created event")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":     created.ID.String(),
		"order_number": created.OrderNumber,
	})
	s.logg.Info(logCtx, "order created")
	return created, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toDTO(row))
	}
	return &ListResult{Orders: dtos, NextCursor: nextCursor}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := toDTO(*order)
	return &dto, nil
}

// UpdateStatus applies the shipped/delivered flags. Delivered implies
// shipped, and clearing shipped also clears delivered.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if update.IsShipped == nil && update.IsDelivered == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no status change requested")
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	if update.IsShipped != nil {
		order.IsShipped = *update.IsShipped
		if !order.IsShipped {
			order.IsDelivered = false
		}
	}
	if update.IsDelivered != nil {
		order.IsDelivered = *update.IsDelivered
		if order.IsDelivered {
			order.IsShipped = true
		}
	}

	updated, err := s.repo.Update(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":     updated.ID.String(),
		"is_shipped":   updated.IsShipped,
		"is_delivered": updated.IsDelivered,
	})
	s.logg.Info(logCtx, "order status updated")
	dto := toDTO(*updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting order")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
	})
	s.logg.Info(logCtx, "order deleted")
	return nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting orders")
	}
	return count, nil
}
