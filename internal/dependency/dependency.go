package dependency

import (
	"context"
	"database/sql"

	"github.com/donnaphatt/product-tracking-app/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type (
	ContextStore interface {
		Tx(ctx context.Context, fn func(ctx context.Context, store Repository) error) error
	}

	Products interface {
		// AddProduct inserts a product; remaining quantity is initialized
		// to the start quantity.
		AddProduct(ctx context.Context, prd *entity.ProductInsert) (int, error)
		// GetAllProducts returns every product in the catalog.
		GetAllProducts(ctx context.Context) ([]entity.Product, error)
		// GetProductById returns a product by its id.
		GetProductById(ctx context.Context, id int) (*entity.Product, error)
		// DeleteProductById deletes a product by its id.
		DeleteProductById(ctx context.Context, id int) error
		// ReduceStock decrements remaining quantity for each item and fails
		// when any product lacks sufficient stock.
		ReduceStock(ctx context.Context, items []entity.OrderItemInsert) error
		// RestoreStock returns the item quantities back to stock.
		RestoreStock(ctx context.Context, items []entity.OrderItemInsert) error
	}

	Orders interface {
		// AddOrder inserts an order with its items and computed cost fields.
		AddOrder(ctx context.Context, order *entity.OrderInsert, items []entity.OrderItemInsert) (*entity.Order, error)
		// GetAllOrders returns every order with its items.
		GetAllOrders(ctx context.Context) ([]entity.Order, error)
		// GetOrderById returns an order with its items.
		GetOrderById(ctx context.Context, id int) (*entity.Order, error)
		// GetOrdersByEventId returns the orders attributed to an event.
		GetOrdersByEventId(ctx context.Context, eventId int) ([]entity.Order, error)
		// UpdateOrderStatus transitions the order status.
		UpdateOrderStatus(ctx context.Context, id int, status entity.OrderStatus) error
		// UpdateOrderCosts writes recomputed total cost and profit.
		UpdateOrderCosts(ctx context.Context, id int, totalCost, profit decimal.Decimal) error
	}

	Events interface {
		// AddEvent inserts a live-selling event.
		AddEvent(ctx context.Context, event *entity.LiveSellingEventInsert) (int, error)
		// GetAllEvents returns every live-selling event.
		GetAllEvents(ctx context.Context) ([]entity.LiveSellingEvent, error)
		// GetEventById returns an event by its id.
		GetEventById(ctx context.Context, id int) (*entity.LiveSellingEvent, error)
		// DeleteEventById deletes an event. Orders referencing it keep the
		// reference; the allocator degrades their ads-fee share to zero.
		DeleteEventById(ctx context.Context, id int) error
	}

	// Repository is the full data access surface handed to services.
	Repository interface {
		ContextStore
		Products() Products
		Orders() Orders
		Events() Events
		Ping(ctx context.Context) error
		Close()
	}

	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		PingContext(ctx context.Context) error
	}
)
