package stats

import (
	"context"
	"fmt"

	"github.com/essenzakw/essenza-backend/internal/orders"
	pkgerrors "github.com/essenzakw/essenza-backend/pkg/errors"
	"github.com/essenzakw/essenza-backend/pkg/pagination"
)

const recentOrderCount = 5

type counter interface {
	Count(ctx context.Context) (int64, error)
}

type orderSource interface {
	Count(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int64, error)
}

type orderLister interface {
	List(ctx context.Context, query orders.ListQuery) (*orders.ListResult, error)
}

// Dashboard is the summary shown on the admin landing page.
type Dashboard struct {
	TotalProducts  int64             `json:"total_products"`
	TotalOrders    int64             `json:"total_orders"`
	PendingOrders  int64             `json:"pending_orders"`
	TotalCustomers int64             `json:"total_customers"`
	RecentOrders   []orders.OrderDTO `json:"recent_orders"`
}

// Service aggregates headline numbers for the dashboard.
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	products  counter
	customers counter
	orderRepo orderSource
	orderSvc  orderLister
}

// ServiceParams bundles the sources the dashboard reads from.
type ServiceParams struct {
	Products     counter
	Customers    counter
	OrderRepo    orderSource
	OrderService orderLister
}

// NewService constructs a stats service with the provided sources.
func NewService(params ServiceParams) (Service, error) {
	if params.Products == nil {
		return nil, fmt.Errorf("product counter is required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer counter is required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.OrderService == nil {
		return nil, fmt.Errorf("order service is required")
	}
	return &service{
		products:  params.Products,
		customers: params.Customers,
		orderRepo: params.OrderRepo,
		orderSvc:  params.OrderService,
	}, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting products")
	}
	customers, err := s.customers.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting customers")
	}
	orderCount, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting orders")
	}
	pending, err := s.orderRepo.CountPending(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting pending orders")
	}
	recent, err := s.orderSvc.List(ctx, orders.ListQuery{
		Pagination: pagination.Params{Limit: recentOrderCount},
	})
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalProducts:  products,
		TotalOrders:    orderCount,
		PendingOrders:  pending,
		TotalCustomers: customers,
		RecentOrders:   recent.Orders,
	}, nil
}
