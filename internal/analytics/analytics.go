// Package analytics rolls raw order records into the sales report: revenue
// and order-count time series, top-product rankings, per-channel breakdowns
// and scalar summary figures. Every reduction is a pure pass over the
// supplied orders; nothing is cached between calls.
package analytics

import (
	"strconv"
	"time"

	"github.com/donnaphatt/product-tracking-app/internal/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// DefaultTopN bounds the top-products ranking.
const DefaultTopN = 5

const unknownChannel = "Unknown"

// Aggregate reduces the order collection, optionally bounded by the
// inclusive period, into a SalesReport. Orders carry their already-computed
// profit; callers wanting figures against the current catalog recompute
// profit first, the way the tracker service does.
func Aggregate(orders []entity.Order, period entity.TimeRange) entity.SalesReport {
	filtered := FilterByPeriod(orders, period)

	report := entity.SalesReport{
		Period:           period,
		TimeSeries:       timeSeries(filtered),
		TopProducts:      TopProducts(filtered, DefaultTopN),
		ChannelBreakdown: channelBreakdown(filtered),
		OrdersCount:      len(filtered),
	}

	for i := range filtered {
		report.TotalRevenue = report.TotalRevenue.Add(filtered[i].Revenue)
		report.TotalProfit = report.TotalProfit.Add(filtered[i].Profit)
	}
	if report.OrdersCount > 0 {
		report.AvgOrderValue = report.TotalRevenue.Div(decimal.NewFromInt(int64(report.OrdersCount)))
	}

	if top := TopProducts(filtered, 1); len(top) > 0 {
		report.TopProduct = strconv.Itoa(top[0].ProductId)
	}
	report.TopChannel = topChannelByOrders(report.ChannelBreakdown)

	return report
}

// AverageDaysInInventory averages, over the products carrying a registration
// date, the whole days elapsed between registration and now. Products never
// registered are skipped; zero when none qualify.
func AverageDaysInInventory(products []entity.Product, now time.Time) decimal.Decimal {
	var totalDays int64
	count := 0
	for i := range products {
		if !products[i].RegistrationDate.Valid {
			continue
		}
		totalDays += int64(now.Sub(products[i].RegistrationDate.Time).Hours() / 24)
		count++
	}
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(totalDays).Div(decimal.NewFromInt(int64(count)))
}

// FilterByPeriod returns the orders whose sold date falls inside the
// inclusive period. A zero bound leaves that side open.
func FilterByPeriod(orders []entity.Order, period entity.TimeRange) []entity.Order {
	if period.From.IsZero() && period.To.IsZero() {
		return orders
	}
	filtered := make([]entity.Order, 0, len(orders))
	for i := range orders {
		d := orders[i].SoldDate
		if !period.From.IsZero() && d.Before(period.From) {
			continue
		}
		if !period.To.IsZero() && d.After(period.To) {
			continue
		}
		filtered = append(filtered, orders[i])
	}
	return filtered
}

// timeSeries groups orders by sold date, summing revenue and counting
// orders per date, sorted ascending.
func timeSeries(orders []entity.Order) []entity.TimeSeriesPoint {
	buckets := make(map[int64]*entity.TimeSeriesPoint)
	for i := range orders {
		o := &orders[i]
		key := o.SoldDate.Unix()
		pt, ok := buckets[key]
		if !ok {
			pt = &entity.TimeSeriesPoint{Date: o.SoldDate}
			buckets[key] = pt
		}
		pt.Revenue = pt.Revenue.Add(o.Revenue)
		pt.Orders++
	}

	series := make([]entity.TimeSeriesPoint, 0, len(buckets))
	for _, pt := range buckets {
		series = append(series, *pt)
	}
	slices.SortFunc(series, func(a, b entity.TimeSeriesPoint) int {
		return a.Date.Compare(b.Date)
	})
	return series
}

// TopProducts accumulates quantity and line revenue per product across all
// order items and returns at most topN products by descending quantity.
// Ties keep the first-encountered product first, which makes the ranking
// deterministic for a fixed input order.
func TopProducts(orders []entity.Order, topN int) []entity.ProductMetric {
	totals := make(map[int]*entity.ProductMetric)
	ranked := make([]*entity.ProductMetric, 0)
	for i := range orders {
		for _, item := range orders[i].Items {
			pm, ok := totals[item.ProductId]
			if !ok {
				pm = &entity.ProductMetric{ProductId: item.ProductId}
				totals[item.ProductId] = pm
				ranked = append(ranked, pm)
			}
			pm.Quantity += item.Quantity
			qty := decimal.NewFromInt(int64(item.Quantity))
			pm.Revenue = pm.Revenue.Add(item.UnitPrice.Mul(qty))
		}
	}

	slices.SortStableFunc(ranked, func(a, b *entity.ProductMetric) int {
		return b.Quantity - a.Quantity
	})
	if topN >= 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}

	out := make([]entity.ProductMetric, len(ranked))
	for i, pm := range ranked {
		out[i] = *pm
	}
	return out
}

// channelBreakdown groups orders by sales channel. Orders without a channel
// land in the "Unknown" bucket.
func channelBreakdown(orders []entity.Order) []entity.ChannelMetric {
	totals := make(map[string]*entity.ChannelMetric)
	breakdown := make([]*entity.ChannelMetric, 0)
	for i := range orders {
		o := &orders[i]
		channel := o.SalesChannel.String()
		if channel == "" {
			channel = unknownChannel
		}
		cm, ok := totals[channel]
		if !ok {
			cm = &entity.ChannelMetric{Channel: channel}
			totals[channel] = cm
			breakdown = append(breakdown, cm)
		}
		cm.Orders++
		cm.Revenue = cm.Revenue.Add(o.Revenue)
	}

	out := make([]entity.ChannelMetric, len(breakdown))
	for i, cm := range breakdown {
		out[i] = *cm
	}
	return out
}

// topChannelByOrders picks the channel with the most orders, not the most
// revenue. Empty string when there are no orders.
func topChannelByOrders(breakdown []entity.ChannelMetric) string {
	top := ""
	best := 0
	for _, cm := range breakdown {
		if cm.Orders > best {
			best = cm.Orders
			top = cm.Channel
		}
	}
	return top
}
