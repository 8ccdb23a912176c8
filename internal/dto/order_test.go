package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donnaphatt/product-tracking-app/internal/entity"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d.Time)

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("15/03/2024")
	require.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-15"`, string(b))

	b, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-06-01"`), &d))
	assert.Equal(t, "2024-06-01", d.String())
}

func TestConvertOrderCreateRequest(t *testing.T) {
	evt := 7
	req := &OrderCreateRequest{
		Items: []OrderItemRequest{
			{ProductId: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(150)},
		},
		SalesChannel:       entity.ChannelLiveSelling,
		MarketplaceFee:     decimal.NewFromInt(30),
		SellerCoupon:       decimal.NewFromInt(15),
		Revenue:            decimal.NewFromInt(300),
		SoldDate:           NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		LiveSellingEventId: &evt,
	}

	order, items, err := ConvertOrderCreateRequestToEntity(req)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Empty(t, req.Status, "defaulting the status must not write into the request")

	// live-selling orders carry no marketplace fee or coupon
	assert.True(t, order.MarketplaceFee.IsZero())
	assert.True(t, order.SellerCoupon.IsZero())
	id, ok := order.EventRef()
	require.True(t, ok)
	assert.Equal(t, 7, id)
}

func TestConvertOrderCreateRequestMarketplace(t *testing.T) {
	evt := 7
	req := &OrderCreateRequest{
		Items: []OrderItemRequest{
			{ProductId: 1, Quantity: 1},
		},
		SalesChannel:       entity.ChannelShopee,
		MarketplaceFee:     decimal.NewFromInt(30),
		Revenue:            decimal.NewFromInt(300),
		SoldDate:           NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		Status:             entity.OrderStatusShipped,
		LiveSellingEventId: &evt,
	}

	order, _, err := ConvertOrderCreateRequestToEntity(req)
	require.NoError(t, err)
	assert.True(t, order.MarketplaceFee.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, entity.OrderStatusShipped, order.Status)

	// only the live-selling channel may reference an event
	_, ok := order.EventRef()
	assert.False(t, ok)
}

func TestConvertOrderCreateRequestRejects(t *testing.T) {
	base := func() *OrderCreateRequest {
		return &OrderCreateRequest{
			Items: []OrderItemRequest{
				{ProductId: 1, Quantity: 1},
			},
			SalesChannel: entity.ChannelShopee,
			Revenue:      decimal.NewFromInt(100),
			SoldDate:     NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		}
	}

	req := base()
	req.Items = nil
	_, _, err := ConvertOrderCreateRequestToEntity(req)
	require.Error(t, err)

	req = base()
	req.SalesChannel = "lazada"
	_, _, err = ConvertOrderCreateRequestToEntity(req)
	require.Error(t, err)

	req = base()
	req.Status = "returned"
	_, _, err = ConvertOrderCreateRequestToEntity(req)
	require.Error(t, err)

	req = base()
	req.Items[0].Quantity = 0
	_, _, err = ConvertOrderCreateRequestToEntity(req)
	require.Error(t, err)

	req = base()
	req.Items = append(req.Items, OrderItemRequest{ProductId: 1, Quantity: 3})
	_, _, err = ConvertOrderCreateRequestToEntity(req)
	require.Error(t, err)
}
