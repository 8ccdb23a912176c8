// Package profit computes per-order cost allocation and profit. Every
// computation is a pure function of the supplied collections: product cost
// and the shared ads-fee split are re-derived from the current catalog and
// event set on every call, so re-running after a catalog or event change
// yields updated figures for the same stored order.
package profit

import (
	"fmt"

	"github.com/donnaphatt/product-tracking-app/internal/entity"
	"github.com/shopspring/decimal"
)

// WarningKind classifies a reference that could not be resolved against the
// supplied collections.
type WarningKind string

const (
	WarningProductNotFound WarningKind = "product_not_found"
	WarningEventNotFound   WarningKind = "event_not_found"
)

// Warning records a reference-resolution miss. Misses are not errors: the
// affected contribution degrades to zero, and the caller decides whether
// that is acceptable.
type Warning struct {
	Kind WarningKind
	Id   int
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: id %d", w.Kind, w.Id)
}

// Breakdown is the cost allocation for a single order.
type Breakdown struct {
	ProductCost     decimal.Decimal
	SharedShipping  decimal.Decimal
	AllocatedAdsFee decimal.Decimal
	TotalCost       decimal.Decimal
	Profit          decimal.Decimal
	Warnings        []Warning
}

// Compute derives the cost breakdown and profit for one order.
//
// Product cost and shared shipping sum the catalog's current per-unit
// figures over the order items; items referencing unknown products
// contribute zero and produce a Warning. The ads fee of a referenced
// live-selling event is split evenly across every order in allOrders
// attributed to that event. Total cost adds the order's own fee fields on
// top, and profit is the declared revenue minus total cost.
//
// Compute does not mutate any of its inputs.
func Compute(order *entity.Order, catalog entity.Catalog, events entity.EventSet, allOrders []entity.Order) Breakdown {
	var b Breakdown

	for _, item := range order.Items {
		if item.Quantity < 0 {
			panic(fmt.Sprintf("order %d: negative quantity %d for product %d", order.Id, item.Quantity, item.ProductId))
		}
		prd, ok := catalog[item.ProductId]
		if !ok {
			b.Warnings = append(b.Warnings, Warning{Kind: WarningProductNotFound, Id: item.ProductId})
			continue
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		b.ProductCost = b.ProductCost.Add(prd.PurchasePrice.Mul(qty))
		b.SharedShipping = b.SharedShipping.Add(prd.ShippingFee.Mul(qty))
	}

	b.AllocatedAdsFee = allocateAdsFee(&order.OrderInsert, events, allOrders, &b.Warnings)

	b.TotalCost = order.MarketplaceFee.
		Add(order.ShippingFee).
		Add(order.SellerCoupon).
		Add(b.ProductCost).
		Add(b.SharedShipping).
		Add(b.AllocatedAdsFee)
	b.Profit = order.Revenue.Sub(b.TotalCost)

	return b
}

// Apply writes the computed breakdown back onto the order.
func (b Breakdown) Apply(order *entity.Order) {
	order.TotalCost = b.TotalCost
	order.Profit = b.Profit
}

// allocateAdsFee returns the order's even share of its event's flat ads fee.
// The denominator is the count of orders currently attributed to the event,
// so shares shrink as more orders attach. Zero when the order references no
// event, the event is unknown, or nothing is attributed to it.
func allocateAdsFee(order *entity.OrderInsert, events entity.EventSet, allOrders []entity.Order, warnings *[]Warning) decimal.Decimal {
	eventId, ok := order.EventRef()
	if !ok {
		return decimal.Zero
	}
	event, ok := events[eventId]
	if !ok {
		*warnings = append(*warnings, Warning{Kind: WarningEventNotFound, Id: eventId})
		return decimal.Zero
	}
	count := CountOrdersForEvent(allOrders, eventId)
	if count == 0 {
		return decimal.Zero
	}
	return event.AdsFee.Div(decimal.NewFromInt(int64(count)))
}

// CountOrdersForEvent counts the orders attributed to the given event.
func CountOrdersForEvent(orders []entity.Order, eventId int) int {
	count := 0
	for i := range orders {
		if id, ok := orders[i].EventRef(); ok && id == eventId {
			count++
		}
	}
	return count
}
