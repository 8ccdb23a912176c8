package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/donnaphatt/product-tracking-app/internal/dependency"
	"github.com/donnaphatt/product-tracking-app/internal/dto"
	"github.com/donnaphatt/product-tracking-app/internal/entity"
	"github.com/donnaphatt/product-tracking-app/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repository for service tests. costWrites counts
// UpdateOrderCosts calls per order id.
type fakeRepo struct {
	products   map[int]*entity.Product
	events     map[int]*entity.LiveSellingEvent
	orders     map[int]*entity.Order
	costWrites map[int]int
	nextId     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products:   map[int]*entity.Product{},
		events:     map[int]*entity.LiveSellingEvent{},
		orders:     map[int]*entity.Order{},
		costWrites: map[int]int{},
		nextId:     1,
	}
}

func (f *fakeRepo) id() int {
	id := f.nextId
	f.nextId++
	return id
}

func (f *fakeRepo) Tx(ctx context.Context, fn func(context.Context, dependency.Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) Products() dependency.Products  { return (*fakeProducts)(f) }
func (f *fakeRepo) Orders() dependency.Orders      { return (*fakeOrders)(f) }
func (f *fakeRepo) Events() dependency.Events      { return (*fakeEvents)(f) }
func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close()                         {}

type fakeProducts fakeRepo

func (f *fakeProducts) AddProduct(ctx context.Context, prd *entity.ProductInsert) (int, error) {
	id := (*fakeRepo)(f).id()
	f.products[id] = &entity.Product{
		Id:                id,
		RemainingQuantity: prd.StartQuantity,
		ProductInsert:     *prd,
	}
	return id, nil
}

func (f *fakeProducts) GetAllProducts(ctx context.Context) ([]entity.Product, error) {
	out := make([]entity.Product, 0, len(f.products))
	for id := 1; id < f.nextId; id++ {
		if p, ok := f.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProducts) GetProductById(ctx context.Context, id int) (*entity.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) DeleteProductById(ctx context.Context, id int) error {
	if _, ok := f.products[id]; !ok {
		return store.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProducts) ReduceStock(ctx context.Context, items []entity.OrderItemInsert) error {
	for _, item := range items {
		p, ok := f.products[item.ProductId]
		if !ok || p.RemainingQuantity < item.Quantity {
			return fmt.Errorf("product %d: %w", item.ProductId, store.ErrInsufficientStock)
		}
		p.RemainingQuantity -= item.Quantity
	}
	return nil
}

func (f *fakeProducts) RestoreStock(ctx context.Context, items []entity.OrderItemInsert) error {
	for _, item := range items {
		if p, ok := f.products[item.ProductId]; ok {
			p.RemainingQuantity += item.Quantity
			if p.RemainingQuantity > p.StartQuantity {
				p.RemainingQuantity = p.StartQuantity
			}
		}
	}
	return nil
}

type fakeOrders fakeRepo

func (f *fakeOrders) AddOrder(ctx context.Context, order *entity.OrderInsert, items []entity.OrderItemInsert) (*entity.Order, error) {
	id := (*fakeRepo)(f).id()
	o := &entity.Order{
		Id:          id,
		UUID:        uuid.New().String(),
		OrderInsert: *order,
	}
	for _, item := range items {
		o.Items = append(o.Items, entity.OrderItem{
			Id:              (*fakeRepo)(f).id(),
			OrderId:         id,
			OrderItemInsert: item,
		})
	}
	f.orders[id] = o
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) GetAllOrders(ctx context.Context) ([]entity.Order, error) {
	out := make([]entity.Order, 0, len(f.orders))
	for id := 1; id < f.nextId; id++ {
		if o, ok := f.orders[id]; ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) GetOrderById(ctx context.Context, id int) (*entity.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) GetOrdersByEventId(ctx context.Context, eventId int) ([]entity.Order, error) {
	all, _ := f.GetAllOrders(ctx)
	out := make([]entity.Order, 0)
	for _, o := range all {
		if id, ok := o.EventRef(); ok && id == eventId {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) UpdateOrderStatus(ctx context.Context, id int, status entity.OrderStatus) error {
	o, ok := f.orders[id]
	if !ok {
		return store.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrders) UpdateOrderCosts(ctx context.Context, id int, totalCost, profit decimal.Decimal) error {
	o, ok := f.orders[id]
	if !ok {
		return store.ErrOrderNotFound
	}
	o.TotalCost = totalCost
	o.Profit = profit
	f.costWrites[id]++
	return nil
}

type fakeEvents fakeRepo

func (f *fakeEvents) AddEvent(ctx context.Context, event *entity.LiveSellingEventInsert) (int, error) {
	id := (*fakeRepo)(f).id()
	f.events[id] = &entity.LiveSellingEvent{Id: id, LiveSellingEventInsert: *event}
	return id, nil
}

func (f *fakeEvents) GetAllEvents(ctx context.Context) ([]entity.LiveSellingEvent, error) {
	out := make([]entity.LiveSellingEvent, 0, len(f.events))
	for id := 1; id < f.nextId; id++ {
		if e, ok := f.events[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEvents) GetEventById(ctx context.Context, id int) (*entity.LiveSellingEvent, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, store.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) DeleteEventById(ctx context.Context, id int) error {
	if _, ok := f.events[id]; !ok {
		return store.ErrEventNotFound
	}
	delete(f.events, id)
	return nil
}

// helpers

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProduct(t *testing.T, repo *fakeRepo, name, price, shipping string, qty int) int {
	t.Helper()
	id, err := repo.Products().AddProduct(context.Background(), &entity.ProductInsert{
		Name:          name,
		PurchasePrice: dec(price),
		ShippingFee:   dec(shipping),
		StartQuantity: qty,
	})
	require.NoError(t, err)
	return id
}

func seedEvent(t *testing.T, repo *fakeRepo, adsFee string) int {
	t.Helper()
	id, err := repo.Events().AddEvent(context.Background(), &entity.LiveSellingEventInsert{
		EventDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		AdsFee:    dec(adsFee),
	})
	require.NoError(t, err)
	return id
}

func TestCreateOrder_ComputesCosts(t *testing.T) {
	repo := newFakeRepo()
	srv := New(repo)
	ctx := context.Background()

	p1 := seedProduct(t, repo, "P1", "100", "10", 10)

	resp, err := srv.CreateOrder(ctx, &dto.OrderCreateRequest{
		Items:          []dto.OrderItemRequest{{ProductId: p1, Quantity: 2, UnitPrice: dec("150")}},
		SalesChannel:   entity.ChannelShopee,
		MarketplaceFee: dec("20"),
		ShippingFee:    dec("15"),
		SellerCoupon:   dec("5"),
		Revenue:        dec("300"),
		SoldDate:       dto.NewDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	assert.True(t, resp.TotalCost.Equal(dec("260")), "total cost %s", resp.TotalCost)
	assert.True(t, resp.Profit.Equal(dec("40")), "profit %s", resp.Profit)
	assert.Equal(t, entity.OrderStatusPending, resp.Status)

	prd, err := repo.Products().GetProductById(ctx, p1)
	require.NoError(t, err)
	assert.Equal(t, 8, prd.RemainingQuantity, "stock reduced by order quantity")
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	repo := newFakeRepo()
	srv := New(repo)

	p1 := seedProduct(t, repo, "P1", "100", "10", 1)

	_, err := srv.CreateOrder(context.Background(), &dto.OrderCreateRequest{
		Items:        []dto.OrderItemRequest{{ProductId: p1, Quantity: 2}},
		SalesChannel: entity.ChannelShopee,
		Revenue:      dec("100"),
	})
	assert.ErrorIs(t, err, store.ErrInsufficientStock)
}

func TestCreateOrder_RejectsDuplicateProducts(t *testing.T) {
	repo := newFakeRepo()
	srv := New(repo)

	p1 := seedProduct(t, repo, "P1", "100", "10", 10)

	_, err := srv.CreateOrder(context.Background(), &dto.OrderCreateRequest{
		Items: []dto.OrderItemRequest{
			{ProductId: p1, Quantity: 1},
			{ProductId: p1, Quantity: 2},
		},
		SalesChannel: entity.ChannelShopee,
		Revenue:      dec("100"),
	})
	var ve *entity.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	repo := newFakeRepo()
	srv := New(repo)

	_, err := srv.CreateOrder(context.Background(), &dto.OrderCreateRequest{
		Items:        []dto.OrderItemRequest{{ProductId: 99, Quantity: 1}},
		SalesChannel: entity.ChannelShopee,
		Revenue:      dec("100"),
	})
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestCreateOrder_LiveSellingReallocatesSiblings(t *testing.T) {
	repo := newFakeRepo()
	srv := New(repo)
	ctx := context.Background()

	p1 := seedProduct(t, repo, "P1", "40", "0", 100)
	eventId := seedEvent(t, repo, "300")

	newLiveOrder := func() *dto.OrderResponse {
		resp, err := srv.CreateOrder(ctx, &dto.OrderCreateRequest{
			Items:              []dto.OrderItemRequest{{ProductId: p1, Quantity: 1, UnitPrice: dec("80")}},
			SalesChannel:       entity.ChannelLiveSelling,
			MarketplaceFee:     dec("999"), // must be zeroed for live selling
			SellerCoupon:       dec("999"),
			Revenue:            dec("80"),
			SoldDate:           dto.NewDate(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
			LiveSellingEventId: &eventId,
		})
		require.NoError(t, err)
		return resp
	}

	first := newLiveOrder()
	// Sole order on the event carries the whole fee: 40 + 300 = 340.
	assert.True(t, first.TotalCost.Equal(dec("340")), "total cost %s", first.TotalCost)
	assert.True(t, first.MarketplaceFee.IsZero(), "live selling has no marketplace fee")
	assert.True(t, first.SellerCoupon.IsZero())

	second := newLiveOrder()
	assert.True(t, second.TotalCost.Equal(dec("190")), "split share, total cost %s", second.TotalCost)

	// The first order was recomputed when the second attached.
	stored, err := repo.Orders().GetOrderById(ctx, first.Id)
	require.NoError(t, err)
	assert.True(t, stored.TotalCost.Equal(dec("190")), "sibling reallocated, got %s", stored.TotalCost)
	assert.True(t, stored.Profit.Equal(dec("-110")), "profit %s", stored.Profit)

	// The created order carries its share from the initial write; only the
	// siblings get a second one.
	assert.Equal(t, 1, repo.costWrites[second.Id], "created order written once")
	assert.Equal(t, 2, repo.costWrites[first.Id], "sibling rewritten on the second attach")
}

func TestUpdateOrderStatus_CancelRestoresStock(t *testing.T) {
	repo := newFakeRepo()
	srv := New(repo)
	ctx := context.Background()

	p1 := seedProduct(t, repo, "P1", "100", "0", 5)
	resp, err := srv.CreateOrder(ctx, &dto.OrderCreateRequest{
		Items:        []dto.OrderItemRequest{{ProductId: p1, Quantity: 3}},
		SalesChannel: entity.ChannelShopee,
		Revenue:      dec("400"),
	})
	require.NoError(t, err)

	updated, err := srv.UpdateOrderStatus(ctx, resp.Id, entity.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, updated.Status)

	prd, err := repo.Products().GetProductById(ctx, p1)
	require.NoError(t, err)
	assert.Equal(t, 5, prd.RemainingQuantity)

	_, err = srv.UpdateOrderStatus(ctx, resp.Id, "teleported")
	var ve *entity.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestGetAnalytics(t *testing.T) {
	repo := newFakeRepo()
	srv := New(repo)
	ctx := context.Background()

	p1 := seedProduct(t, repo, "Tote Bag", "100", "10", 50)
	p2 := seedProduct(t, repo, "Mug", "20", "2", 50)

	mustOrder := func(req *dto.OrderCreateRequest) {
		_, err := srv.CreateOrder(ctx, req)
		require.NoError(t, err)
	}

	mustOrder(&dto.OrderCreateRequest{
		Items:        []dto.OrderItemRequest{{ProductId: p1, Quantity: 2, UnitPrice: dec("150")}},
		SalesChannel: entity.ChannelShopee,
		Revenue:      dec("300"),
		SoldDate:     dto.NewDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	mustOrder(&dto.OrderCreateRequest{
		Items:        []dto.OrderItemRequest{{ProductId: p2, Quantity: 5, UnitPrice: dec("30")}},
		SalesChannel: entity.ChannelLiveSelling,
		Revenue:      dec("150"),
		SoldDate:     dto.NewDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
	})

	report, err := srv.GetAnalytics(ctx, entity.TimeRange{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.OrdersCount)
	assert.True(t, report.TotalRevenue.Equal(dec("450")))
	assert.True(t, report.AvgOrderValue.Equal(dec("225")))
	assert.Equal(t, "Mug", report.TopProduct, "5 mugs beat 2 tote bags")
	require.Len(t, report.TimeSeries, 2)
	require.Len(t, report.ChannelBreakdown, 2)

	// Date filter drops the first order everywhere.
	report, err = srv.GetAnalytics(ctx, entity.TimeRange{
		From: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.OrdersCount)
	assert.True(t, report.TotalRevenue.Equal(dec("150")))
}

func TestGetAnalytics_AverageDaysInInventory(t *testing.T) {
	repo := newFakeRepo()
	srv := New(repo)
	ctx := context.Background()

	p1 := seedProduct(t, repo, "P1", "10", "0", 5)
	repo.products[p1].RegistrationDate = sql.NullTime{Time: time.Now().AddDate(0, 0, -10), Valid: true}
	seedProduct(t, repo, "P2", "10", "0", 5) // never registered, excluded

	report, err := srv.GetAnalytics(ctx, entity.TimeRange{})
	require.NoError(t, err)
	assert.True(t, report.AvgDaysInInventory.Equal(dec("10")), "avg days %s", report.AvgDaysInInventory)
}

func TestGetAnalytics_RecomputesFromCurrentCatalog(t *testing.T) {
	repo := newFakeRepo()
	srv := New(repo)
	ctx := context.Background()

	p1 := seedProduct(t, repo, "P1", "100", "0", 10)
	resp, err := srv.CreateOrder(ctx, &dto.OrderCreateRequest{
		Items:        []dto.OrderItemRequest{{ProductId: p1, Quantity: 1, UnitPrice: dec("150")}},
		SalesChannel: entity.ChannelShopee,
		Revenue:      dec("150"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Profit.Equal(dec("50")))

	// A later purchase-price correction changes the reported profit without
	// any order mutation.
	repo.products[p1].PurchasePrice = dec("120")

	report, err := srv.GetAnalytics(ctx, entity.TimeRange{})
	require.NoError(t, err)
	assert.True(t, report.TotalProfit.Equal(dec("30")), "profit recomputed, got %s", report.TotalProfit)
}

func TestCreateProductAndDelete(t *testing.T) {
	repo := newFakeRepo()
	srv := New(repo)
	ctx := context.Background()

	resp, err := srv.CreateProduct(ctx, &dto.ProductCreateRequest{
		Name:          "Tote Bag",
		PurchasePrice: dec("100"),
		ShippingFee:   dec("10"),
		StartQuantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.RemainingQuantity, "remaining starts at start quantity")

	_, err = srv.CreateProduct(ctx, &dto.ProductCreateRequest{
		Name:          "Negative",
		PurchasePrice: dec("-1"),
		StartQuantity: 1,
	})
	var ve *entity.ValidationError
	assert.ErrorAs(t, err, &ve)

	require.NoError(t, srv.DeleteProduct(ctx, resp.Id))
	assert.ErrorIs(t, srv.DeleteProduct(ctx, resp.Id), store.ErrProductNotFound)
}

func TestEventLifecycle(t *testing.T) {
	repo := newFakeRepo()
	srv := New(repo)
	ctx := context.Background()

	resp, err := srv.CreateEvent(ctx, &dto.EventCreateRequest{
		EventDate: dto.NewDate(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		AdsFee:    dec("300"),
		Notes:     "friday night live",
	})
	require.NoError(t, err)

	got, err := srv.GetEvent(ctx, resp.Id)
	require.NoError(t, err)
	assert.Equal(t, "friday night live", got.Notes)

	require.NoError(t, srv.DeleteEvent(ctx, resp.Id))
	_, err = srv.GetEvent(ctx, resp.Id)
	assert.ErrorIs(t, err, store.ErrEventNotFound)
}

func TestOrderWithDeletedEventDegradesToZeroShare(t *testing.T) {
	repo := newFakeRepo()
	srv := New(repo)
	ctx := context.Background()

	p1 := seedProduct(t, repo, "P1", "40", "0", 10)
	eventId := seedEvent(t, repo, "300")

	resp, err := srv.CreateOrder(ctx, &dto.OrderCreateRequest{
		Items:              []dto.OrderItemRequest{{ProductId: p1, Quantity: 1, UnitPrice: dec("80")}},
		SalesChannel:       entity.ChannelLiveSelling,
		Revenue:            dec("80"),
		LiveSellingEventId: &eventId,
	})
	require.NoError(t, err)
	assert.True(t, resp.TotalCost.Equal(dec("340")))

	require.NoError(t, srv.DeleteEvent(ctx, eventId))

	report, err := srv.GetAnalytics(ctx, entity.TimeRange{})
	require.NoError(t, err)
	// Ads fee share is gone with the event: cost 40, profit 40.
	assert.True(t, report.TotalProfit.Equal(dec("40")), "profit %s", report.TotalProfit)
}
