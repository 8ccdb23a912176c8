package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/donnaphatt/product-tracking-app/internal/dependency"
	"github.com/donnaphatt/product-tracking-app/internal/entity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrOrderNotFound is returned when an order id resolves to no row.
var ErrOrderNotFound = errors.New("order not found")

type orderStore struct {
	*MYSQLStore
}

// Orders returns an object implementing the orders interface
func (ms *MYSQLStore) Orders() dependency.Orders {
	return &orderStore{
		MYSQLStore: ms,
	}
}

func (os *orderStore) AddOrder(ctx context.Context, order *entity.OrderInsert, items []entity.OrderItemInsert) (*entity.Order, error) {
	orderUUID := uuid.New().String()

	query := `
	INSERT INTO orders
		(uuid, sales_channel, marketplace_fee, shipping_fee, seller_coupon,
		 revenue, sold_date, status, live_selling_event_id, total_cost, profit)
	VALUES
		(:uuid, :salesChannel, :marketplaceFee, :shippingFee, :sellerCoupon,
		 :revenue, :soldDate, :status, :liveSellingEventId, 0, 0)`

	id, err := ExecNamedLastId(ctx, os.db, query, map[string]any{
		"uuid":               orderUUID,
		"salesChannel":       order.SalesChannel,
		"marketplaceFee":     order.MarketplaceFee,
		"shippingFee":        order.ShippingFee,
		"sellerCoupon":       order.SellerCoupon,
		"revenue":            order.Revenue,
		"soldDate":           order.SoldDate,
		"status":             order.Status,
		"liveSellingEventId": order.LiveSellingEventId,
	})
	if err != nil {
		return nil, fmt.Errorf("can't insert order: %w", err)
	}

	itemQuery := `
	INSERT INTO order_item (order_id, product_id, quantity, unit_price)
	VALUES (:orderId, :productId, :quantity, :unitPrice)`

	inserted := make([]entity.OrderItem, 0, len(items))
	for _, item := range items {
		itemId, err := ExecNamedLastId(ctx, os.db, itemQuery, map[string]any{
			"orderId":   id,
			"productId": item.ProductId,
			"quantity":  item.Quantity,
			"unitPrice": item.UnitPrice,
		})
		if err != nil {
			return nil, fmt.Errorf("can't insert order item: %w", err)
		}
		inserted = append(inserted, entity.OrderItem{
			Id:              itemId,
			OrderId:         id,
			OrderItemInsert: item,
		})
	}

	return &entity.Order{
		Id:          id,
		UUID:        orderUUID,
		Items:       inserted,
		OrderInsert: *order,
	}, nil
}

const selectOrder = `
	SELECT id, uuid, created_at, modified, sales_channel, marketplace_fee,
		shipping_fee, seller_coupon, revenue, sold_date, status,
		live_selling_event_id, total_cost, profit
	FROM orders`

func (os *orderStore) GetAllOrders(ctx context.Context) ([]entity.Order, error) {
	orders, err := QueryListNamed[entity.Order](ctx, os.db, selectOrder+` ORDER BY id`, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't get orders: %w", err)
	}
	if err := os.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (os *orderStore) GetOrderById(ctx context.Context, id int) (*entity.Order, error) {
	order, err := QueryNamedOne[entity.Order](ctx, os.db, selectOrder+` WHERE id = :id`, map[string]any{
		"id": id,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("can't get order by id: %w", err)
	}

	orders := []entity.Order{order}
	if err := os.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (os *orderStore) GetOrdersByEventId(ctx context.Context, eventId int) ([]entity.Order, error) {
	orders, err := QueryListNamed[entity.Order](ctx, os.db,
		selectOrder+` WHERE live_selling_event_id = :eventId ORDER BY id`, map[string]any{
			"eventId": eventId,
		})
	if err != nil {
		return nil, fmt.Errorf("can't get orders by event: %w", err)
	}
	if err := os.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (os *orderStore) UpdateOrderStatus(ctx context.Context, id int, status entity.OrderStatus) error {
	affected, err := ExecNamedRowsAffected(ctx, os.db,
		`UPDATE orders SET status = :status, modified = NOW() WHERE id = :id`, map[string]any{
			"id":     id,
			"status": status,
		})
	if err != nil {
		return fmt.Errorf("can't update order status: %w", err)
	}
	if affected == 0 {
		// the driver counts changed rows, so a no-op rewrite also lands here
		return os.orderExists(ctx, id)
	}
	return nil
}

func (os *orderStore) UpdateOrderCosts(ctx context.Context, id int, totalCost, profit decimal.Decimal) error {
	affected, err := ExecNamedRowsAffected(ctx, os.db,
		`UPDATE orders SET total_cost = :totalCost, profit = :profit, modified = NOW() WHERE id = :id`, map[string]any{
			"id":        id,
			"totalCost": totalCost,
			"profit":    profit,
		})
	if err != nil {
		return fmt.Errorf("can't update order costs: %w", err)
	}
	if affected == 0 {
		return os.orderExists(ctx, id)
	}
	return nil
}

// orderExists distinguishes a missing row from an update that changed
// nothing. Nil when the order is present.
func (os *orderStore) orderExists(ctx context.Context, id int) error {
	type row struct {
		Id int `db:"id"`
	}
	_, err := QueryNamedOne[row](ctx, os.db, `SELECT id FROM orders WHERE id = :id`, map[string]any{
		"id": id,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("can't check order: %w", err)
	}
	return nil
}

// attachItems loads order items for the given orders in one query.
func (os *orderStore) attachItems(ctx context.Context, orders []entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int, len(orders))
	index := make(map[int]*entity.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].Id
		index[orders[i].Id] = &orders[i]
	}

	items, err := QueryListNamed[entity.OrderItem](ctx, os.db, `
	SELECT id, order_id, product_id, quantity, unit_price
	FROM order_item WHERE order_id IN (:orderIds) ORDER BY id`, map[string]any{
		"orderIds": ids,
	})
	if err != nil {
		return fmt.Errorf("can't get order items: %w", err)
	}

	for _, item := range items {
		if o, ok := index[item.OrderId]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return nil
}
