package dto

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/donnaphatt/product-tracking-app/internal/entity"
	"github.com/donnaphatt/product-tracking-app/internal/profit"
	"github.com/shopspring/decimal"
)

type OrderItemRequest struct {
	ProductId int             `json:"product_id" valid:"required"`
	Quantity  int             `json:"quantity" valid:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderCreateRequest struct {
	Items              []OrderItemRequest  `json:"products" valid:"required"`
	SalesChannel       entity.SalesChannel `json:"sales_channel" valid:"required"`
	MarketplaceFee     decimal.Decimal     `json:"marketplace_fee"`
	ShippingFee        decimal.Decimal     `json:"shipping_fee"`
	SellerCoupon       decimal.Decimal     `json:"seller_coupon"`
	Revenue            decimal.Decimal     `json:"revenue" valid:"required"`
	SoldDate           Date                `json:"sold_date"`
	Status             entity.OrderStatus  `json:"status"`
	LiveSellingEventId *int                `json:"live_selling_event_id"`
}

type OrderItemResponse struct {
	ProductId int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderResponse struct {
	Id                 int                 `json:"order_id"`
	UUID               string              `json:"uuid"`
	Items              []OrderItemResponse `json:"products"`
	SalesChannel       entity.SalesChannel `json:"sales_channel"`
	MarketplaceFee     decimal.Decimal     `json:"marketplace_fee"`
	ShippingFee        decimal.Decimal     `json:"shipping_fee"`
	SellerCoupon       decimal.Decimal     `json:"seller_coupon"`
	Revenue            decimal.Decimal     `json:"revenue"`
	TotalCost          decimal.Decimal     `json:"total_cost"`
	Profit             decimal.Decimal     `json:"profit"`
	SoldDate           Date                `json:"sold_date"`
	Status             entity.OrderStatus  `json:"status"`
	LiveSellingEventId *int                `json:"live_selling_event_id,omitempty"`
	Warnings           []string            `json:"warnings,omitempty"`
}

type OrderStatusUpdateRequest struct {
	Status entity.OrderStatus `json:"status" valid:"required"`
}

// ConvertOrderCreateRequestToEntity validates the request and maps it to the
// entity pair the store expects. The live-selling channel contractually has
// no marketplace fee or seller coupon, and only that channel may carry an
// event reference.
func ConvertOrderCreateRequestToEntity(req *OrderCreateRequest) (*entity.OrderInsert, []entity.OrderItemInsert, error) {
	if len(req.Items) == 0 {
		return nil, nil, fmt.Errorf("order must have at least one item")
	}
	if !entity.IsValidSalesChannel(req.SalesChannel) {
		return nil, nil, fmt.Errorf("unknown sales channel %q", req.SalesChannel)
	}
	status := req.Status
	if status == "" {
		status = entity.OrderStatusPending
	}
	if !entity.IsValidOrderStatus(status) {
		return nil, nil, fmt.Errorf("unknown order status %q", status)
	}

	seen := make(map[int]bool, len(req.Items))
	items := make([]entity.OrderItemInsert, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, nil, fmt.Errorf("product %d: quantity must be at least 1", item.ProductId)
		}
		if seen[item.ProductId] {
			return nil, nil, fmt.Errorf("product %d appears in more than one line item", item.ProductId)
		}
		seen[item.ProductId] = true
		items = append(items, entity.OrderItemInsert{
			ProductId: item.ProductId,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order := &entity.OrderInsert{
		SalesChannel:   req.SalesChannel,
		MarketplaceFee: req.MarketplaceFee,
		ShippingFee:    req.ShippingFee,
		SellerCoupon:   req.SellerCoupon,
		Revenue:        req.Revenue,
		SoldDate:       req.SoldDate.Time,
		Status:         status,
	}
	if order.SoldDate.IsZero() {
		order.SoldDate = time.Now().Truncate(24 * time.Hour)
	}

	if req.SalesChannel == entity.ChannelLiveSelling {
		order.MarketplaceFee = decimal.Zero
		order.SellerCoupon = decimal.Zero
		if req.LiveSellingEventId != nil {
			order.LiveSellingEventId = sql.NullInt32{Int32: int32(*req.LiveSellingEventId), Valid: true}
		}
	}

	return order, items, nil
}

func ConvertEntityOrderToResponse(order *entity.Order, warnings []profit.Warning) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ProductId: item.ProductId,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.Round(2),
		})
	}

	resp := OrderResponse{
		Id:             order.Id,
		UUID:           order.UUID,
		Items:          items,
		SalesChannel:   order.SalesChannel,
		MarketplaceFee: order.MarketplaceFee.Round(2),
		ShippingFee:    order.ShippingFee.Round(2),
		SellerCoupon:   order.SellerCoupon.Round(2),
		Revenue:        order.RevenueDecimal(),
		TotalCost:      order.TotalCost.Round(2),
		Profit:         order.ProfitDecimal(),
		SoldDate:       NewDate(order.SoldDate),
		Status:         order.Status,
	}
	if id, ok := order.EventRef(); ok {
		resp.LiveSellingEventId = &id
	}
	for _, w := range warnings {
		resp.Warnings = append(resp.Warnings, w.String())
	}
	return resp
}
