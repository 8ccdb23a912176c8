// Package tracker implements the merchant-facing API: product catalog,
// orders, live-selling events and the analytics report. Cost and profit
// figures are reproducible reports computed from the current catalog and
// event set, not immutable ledger entries: creating or removing orders on a
// live-selling event re-allocates every sibling order's ads-fee share.
package tracker

import (
	"context"
	"fmt"
	"time"

	v "github.com/asaskevich/govalidator"
	"golang.org/x/sync/errgroup"

	"github.com/donnaphatt/product-tracking-app/internal/analytics"
	"github.com/donnaphatt/product-tracking-app/internal/dependency"
	"github.com/donnaphatt/product-tracking-app/internal/dto"
	"github.com/donnaphatt/product-tracking-app/internal/entity"
	"github.com/donnaphatt/product-tracking-app/internal/profit"
)

// Server implements handlers for the tracker API.
type Server struct {
	repo dependency.Repository
}

// New creates a new server with tracker handlers.
func New(r dependency.Repository) *Server {
	return &Server{
		repo: r,
	}
}

// PRODUCTS

func (s *Server) CreateProduct(ctx context.Context, req *dto.ProductCreateRequest) (*dto.ProductResponse, error) {
	if _, err := v.ValidateStruct(req); err != nil {
		return nil, &entity.ValidationError{Message: err.Error()}
	}
	if req.StartQuantity < 0 {
		return nil, &entity.ValidationError{Message: "start quantity can't be negative"}
	}
	if req.PurchasePrice.IsNegative() || req.ShippingFee.IsNegative() {
		return nil, &entity.ValidationError{Message: "purchase price and shipping fee can't be negative"}
	}

	prd := dto.ConvertProductCreateRequestToEntity(req)
	id, err := s.repo.Products().AddProduct(ctx, prd)
	if err != nil {
		return nil, fmt.Errorf("can't add product: %w", err)
	}

	full, err := s.repo.Products().GetProductById(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("can't get created product: %w", err)
	}
	resp := dto.ConvertEntityProductToResponse(full)
	return &resp, nil
}

func (s *Server) GetProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.Products().GetAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't get products: %w", err)
	}
	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, dto.ConvertEntityProductToResponse(&products[i]))
	}
	return resp, nil
}

func (s *Server) DeleteProduct(ctx context.Context, id int) error {
	return s.repo.Products().DeleteProductById(ctx, id)
}

// EVENTS

func (s *Server) CreateEvent(ctx context.Context, req *dto.EventCreateRequest) (*dto.EventResponse, error) {
	if req.AdsFee.IsNegative() {
		return nil, &entity.ValidationError{Message: "ads fee can't be negative"}
	}

	event := dto.ConvertEventCreateRequestToEntity(req)
	id, err := s.repo.Events().AddEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("can't add event: %w", err)
	}

	full, err := s.repo.Events().GetEventById(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("can't get created event: %w", err)
	}
	resp := dto.ConvertEntityEventToResponse(full)
	return &resp, nil
}

func (s *Server) GetEvents(ctx context.Context) ([]dto.EventResponse, error) {
	events, err := s.repo.Events().GetAllEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't get events: %w", err)
	}
	resp := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		resp = append(resp, dto.ConvertEntityEventToResponse(&events[i]))
	}
	return resp, nil
}

func (s *Server) GetEvent(ctx context.Context, id int) (*dto.EventResponse, error) {
	event, err := s.repo.Events().GetEventById(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ConvertEntityEventToResponse(event)
	return &resp, nil
}

// DeleteEvent removes a live-selling event. Sibling orders keep their
// references; their ads-fee share degrades to zero on the next computation.
func (s *Server) DeleteEvent(ctx context.Context, id int) error {
	return s.repo.Events().DeleteEventById(ctx, id)
}

// ORDERS

// CreateOrder validates the order, reserves stock, persists it and computes
// its cost breakdown. When the order is attributed to a live-selling event
// the ads-fee share of every order on that event shrinks, so all siblings
// are recomputed inside the same transaction.
func (s *Server) CreateOrder(ctx context.Context, req *dto.OrderCreateRequest) (*dto.OrderResponse, error) {
	order, items, err := dto.ConvertOrderCreateRequestToEntity(req)
	if err != nil {
		return nil, &entity.ValidationError{Message: err.Error()}
	}
	if order.Revenue.IsNegative() {
		return nil, &entity.ValidationError{Message: "revenue can't be negative"}
	}

	var resp dto.OrderResponse
	err = s.repo.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		for _, item := range items {
			if _, err := rep.Products().GetProductById(ctx, item.ProductId); err != nil {
				return fmt.Errorf("product %d: %w", item.ProductId, err)
			}
		}
		if err := rep.Products().ReduceStock(ctx, items); err != nil {
			return fmt.Errorf("can't reduce stock: %w", err)
		}

		created, err := rep.Orders().AddOrder(ctx, order, items)
		if err != nil {
			return fmt.Errorf("can't add order: %w", err)
		}

		catalog, events, orders, err := loadCollections(ctx, rep)
		if err != nil {
			return err
		}

		breakdown := profit.Compute(created, catalog, events, orders)
		if err := rep.Orders().UpdateOrderCosts(ctx, created.Id, breakdown.TotalCost, breakdown.Profit); err != nil {
			return fmt.Errorf("can't update order costs: %w", err)
		}
		breakdown.Apply(created)

		if eventId, ok := created.EventRef(); ok {
			if err := s.reallocateEventOrders(ctx, rep, eventId, created.Id, catalog, events, orders); err != nil {
				return err
			}
		}

		resp = dto.ConvertEntityOrderToResponse(created, breakdown.Warnings)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Server) GetOrders(ctx context.Context) ([]dto.OrderResponse, error) {
	orders, err := s.repo.Orders().GetAllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't get orders: %w", err)
	}
	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, dto.ConvertEntityOrderToResponse(&orders[i], nil))
	}
	return resp, nil
}

func (s *Server) GetOrder(ctx context.Context, id int) (*dto.OrderResponse, error) {
	order, err := s.repo.Orders().GetOrderById(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ConvertEntityOrderToResponse(order, nil)
	return &resp, nil
}

// UpdateOrderStatus transitions an order's status. Cancelling returns the
// order's units to stock.
func (s *Server) UpdateOrderStatus(ctx context.Context, id int, status entity.OrderStatus) (*dto.OrderResponse, error) {
	if !entity.IsValidOrderStatus(status) {
		return nil, &entity.ValidationError{Message: fmt.Sprintf("unknown order status %q", status)}
	}

	var resp dto.OrderResponse
	err := s.repo.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		order, err := rep.Orders().GetOrderById(ctx, id)
		if err != nil {
			return err
		}
		if err := rep.Orders().UpdateOrderStatus(ctx, id, status); err != nil {
			return err
		}
		if status == entity.OrderStatusCancelled && order.Status != entity.OrderStatusCancelled {
			if err := rep.Products().RestoreStock(ctx, entity.ConvertOrderItemToOrderItemInsert(order.Items)); err != nil {
				return fmt.Errorf("can't restore stock: %w", err)
			}
		}
		order.Status = status
		resp = dto.ConvertEntityOrderToResponse(order, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ANALYTICS

// GetAnalytics builds the sales report for the optional inclusive period.
// Profit is recomputed from the current catalog and event set before
// aggregation so the report reflects today's costs, not entry-time
// snapshots.
func (s *Server) GetAnalytics(ctx context.Context, period entity.TimeRange) (*dto.SalesReportResponse, error) {
	var (
		products []entity.Product
		events   []entity.LiveSellingEvent
		orders   []entity.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.repo.Products().GetAllProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		events, err = s.repo.Events().GetAllEvents(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.repo.Orders().GetAllOrders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("can't load collections: %w", err)
	}

	catalog := entity.CatalogFromProducts(products)
	eventSet := entity.EventSetFromEvents(events)
	for i := range orders {
		profit.Compute(&orders[i], catalog, eventSet, orders).Apply(&orders[i])
	}

	report := analytics.Aggregate(orders, period)
	report.AvgDaysInInventory = analytics.AverageDaysInInventory(products, time.Now())
	resp := dto.ConvertEntitySalesReportToResponse(&report, catalog)
	return &resp, nil
}

// Health reports database connectivity.
func (s *Server) Health(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// reallocateEventOrders rewrites cost and profit for the orders attributed
// to the event, using the already-loaded collections. The order identified by
// skipId already carries its freshly computed share and is left alone.
func (s *Server) reallocateEventOrders(ctx context.Context, rep dependency.Repository, eventId, skipId int, catalog entity.Catalog, events entity.EventSet, orders []entity.Order) error {
	for i := range orders {
		id, ok := orders[i].EventRef()
		if !ok || id != eventId || orders[i].Id == skipId {
			continue
		}
		b := profit.Compute(&orders[i], catalog, events, orders)
		if err := rep.Orders().UpdateOrderCosts(ctx, orders[i].Id, b.TotalCost, b.Profit); err != nil {
			return fmt.Errorf("can't reallocate order %d: %w", orders[i].Id, err)
		}
	}
	return nil
}

// loadCollections fetches the catalog, event set and full order collection.
// Runs inside a transaction, so queries are sequential.
func loadCollections(ctx context.Context, rep dependency.Repository) (entity.Catalog, entity.EventSet, []entity.Order, error) {
	products, err := rep.Products().GetAllProducts(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("can't get products: %w", err)
	}
	events, err := rep.Events().GetAllEvents(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("can't get events: %w", err)
	}
	orders, err := rep.Orders().GetAllOrders(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("can't get orders: %w", err)
	}
	return entity.CatalogFromProducts(products), entity.EventSetFromEvents(events), orders, nil
}
