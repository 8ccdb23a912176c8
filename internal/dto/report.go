package dto

import (
	"github.com/donnaphatt/product-tracking-app/internal/entity"
	"github.com/shopspring/decimal"
)

type TimeSeriesPointResponse struct {
	SoldDate Date            `json:"sold_date"`
	Revenue  decimal.Decimal `json:"revenue"`
	Orders   int             `json:"orders"`
}

type ProductMetricResponse struct {
	ProductId int             `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type ChannelMetricResponse struct {
	Channel string          `json:"channel"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type SalesReportResponse struct {
	From               Date                      `json:"from,omitempty"`
	To                 Date                      `json:"to,omitempty"`
	TimeSeries         []TimeSeriesPointResponse `json:"time_series"`
	TopProducts        []ProductMetricResponse   `json:"top_products"`
	ChannelBreakdown   []ChannelMetricResponse   `json:"channel_breakdown"`
	OrdersCount        int                       `json:"orders_count"`
	TotalRevenue       decimal.Decimal           `json:"total_revenue"`
	TotalProfit        decimal.Decimal           `json:"total_profit"`
	AvgOrderValue      decimal.Decimal           `json:"average_order_value"`
	AvgDaysInInventory decimal.Decimal           `json:"average_days_in_inventory"`
	TopProduct         string                    `json:"top_product"`
	TopChannel         string                    `json:"top_channel"`
}

// ConvertEntitySalesReportToResponse maps a report to its JSON shape,
// resolving product names against the catalog where known. The top product
// stays the raw product id string when the catalog no longer has it.
func ConvertEntitySalesReportToResponse(report *entity.SalesReport, catalog entity.Catalog) SalesReportResponse {
	resp := SalesReportResponse{
		From:               NewDate(report.Period.From),
		To:                 NewDate(report.Period.To),
		OrdersCount:        report.OrdersCount,
		TotalRevenue:       report.TotalRevenue.Round(2),
		TotalProfit:        report.TotalProfit.Round(2),
		AvgOrderValue:      report.AvgOrderValue.Round(2),
		AvgDaysInInventory: report.AvgDaysInInventory.Round(2),
		TopProduct:         report.TopProduct,
		TopChannel:         report.TopChannel,
	}

	resp.TimeSeries = make([]TimeSeriesPointResponse, 0, len(report.TimeSeries))
	for _, pt := range report.TimeSeries {
		resp.TimeSeries = append(resp.TimeSeries, TimeSeriesPointResponse{
			SoldDate: NewDate(pt.Date),
			Revenue:  pt.Revenue.Round(2),
			Orders:   pt.Orders,
		})
	}

	resp.TopProducts = make([]ProductMetricResponse, 0, len(report.TopProducts))
	for _, pm := range report.TopProducts {
		row := ProductMetricResponse{
			ProductId: pm.ProductId,
			Quantity:  pm.Quantity,
			Revenue:   pm.Revenue.Round(2),
		}
		if prd, ok := catalog[pm.ProductId]; ok {
			row.Name = prd.Name
		}
		resp.TopProducts = append(resp.TopProducts, row)
	}
	if len(report.TopProducts) > 0 {
		if prd, ok := catalog[report.TopProducts[0].ProductId]; ok {
			resp.TopProduct = prd.Name
		}
	}

	resp.ChannelBreakdown = make([]ChannelMetricResponse, 0, len(report.ChannelBreakdown))
	for _, cm := range report.ChannelBreakdown {
		resp.ChannelBreakdown = append(resp.ChannelBreakdown, ChannelMetricResponse{
			Channel: cm.Channel,
			Orders:  cm.Orders,
			Revenue: cm.Revenue.Round(2),
		})
	}

	return resp
}
