package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type SalesChannel string

const (
	ChannelShopee      SalesChannel = "shopee"
	ChannelLiveSelling SalesChannel = "live_selling"
)

func (sc SalesChannel) String() string {
	return string(sc)
}

var ValidSalesChannels = map[SalesChannel]bool{
	ChannelShopee:      true,
	ChannelLiveSelling: true,
}

func IsValidSalesChannel(sc SalesChannel) bool {
	return ValidSalesChannels[sc]
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var ValidOrderStatuses = map[OrderStatus]bool{
	OrderStatusPending:   true,
	OrderStatusShipped:   true,
	OrderStatusDelivered: true,
	OrderStatusCancelled: true,
}

func IsValidOrderStatus(os OrderStatus) bool {
	return ValidOrderStatuses[os]
}

// Order represents the orders table. Revenue is declared by the merchant at
// entry time, not derived from item prices: actual proceeds can differ from
// catalog prices. TotalCost and Profit are computed fields, re-derived from
// the current catalog and event set rather than snapshotted.
type Order struct {
	Id        int             `db:"id"`
	UUID      string          `db:"uuid"`
	CreatedAt time.Time       `db:"created_at"`
	Modified  time.Time       `db:"modified"`
	TotalCost decimal.Decimal `db:"total_cost"`
	Profit    decimal.Decimal `db:"profit"`
	Items     []OrderItem
	OrderInsert
}

type OrderInsert struct {
	SalesChannel       SalesChannel    `db:"sales_channel" valid:"required"`
	MarketplaceFee     decimal.Decimal `db:"marketplace_fee"`
	ShippingFee        decimal.Decimal `db:"shipping_fee"`
	SellerCoupon       decimal.Decimal `db:"seller_coupon"`
	Revenue            decimal.Decimal `db:"revenue" valid:"required"`
	SoldDate           time.Time       `db:"sold_date" valid:"required"`
	Status             OrderStatus     `db:"status" valid:"required"`
	LiveSellingEventId sql.NullInt32   `db:"live_selling_event_id" valid:"-"`
}

// OrderItem represents the order_item table. UnitPrice is the line selling
// price used for product revenue rankings, distinct from the product's
// purchase cost.
type OrderItem struct {
	Id      int `db:"id"`
	OrderId int `db:"order_id"`
	OrderItemInsert
}

type OrderItemInsert struct {
	ProductId int             `db:"product_id" valid:"required"`
	Quantity  int             `db:"quantity" valid:"required"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}

func (o *Order) RevenueDecimal() decimal.Decimal {
	return o.Revenue.Round(2)
}

func (o *Order) ProfitDecimal() decimal.Decimal {
	return o.Profit.Round(2)
}

// EventRef returns the referenced live-selling event id, false when the
// order is not attributed to any event.
func (o *OrderInsert) EventRef() (int, bool) {
	if !o.LiveSellingEventId.Valid {
		return 0, false
	}
	return int(o.LiveSellingEventId.Int32), true
}

func ConvertOrderItemToOrderItemInsert(items []OrderItem) []OrderItemInsert {
	inserts := make([]OrderItemInsert, len(items))
	for i, item := range items {
		inserts[i] = item.OrderItemInsert
	}
	return inserts
}
