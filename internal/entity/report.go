package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeRange is an inclusive [From, To] bound on sold dates. A zero bound
// means the side is open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// TimeSeriesPoint is one sold-date bucket of the revenue/orders chart data.
type TimeSeriesPoint struct {
	Date    time.Time
	Revenue decimal.Decimal
	Orders  int
}

// ProductMetric is one row of the top-products ranking. Revenue accumulates
// quantity times the line unit price across every order item of the product.
type ProductMetric struct {
	ProductId int
	Quantity  int
	Revenue   decimal.Decimal
}

// ChannelMetric is one row of the per-channel breakdown.
type ChannelMetric struct {
	Channel string
	Orders  int
	Revenue decimal.Decimal
}

// SalesReport contains all computed analytics for a reporting period.
// An empty order set yields zero scalars and empty slices, never an error.
type SalesReport struct {
	Period TimeRange

	TimeSeries       []TimeSeriesPoint
	TopProducts      []ProductMetric
	ChannelBreakdown []ChannelMetric

	OrdersCount   int
	TotalRevenue  decimal.Decimal
	TotalProfit   decimal.Decimal
	AvgOrderValue decimal.Decimal

	// AvgDaysInInventory is derived from the product catalog, not from
	// orders, and is independent of the reporting period.
	AvgDaysInInventory decimal.Decimal

	// TopProduct and TopChannel are empty strings when there are no orders.
	TopProduct string
	TopChannel string
}
