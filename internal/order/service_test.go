package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/tienda-ecom/internal/validation"
)

// memStore keeps orders and product stock in memory. WithTx works on a copy
// and only keeps it when fn succeeds.
type memStore struct {
	mu     sync.Mutex
	orders map[string]*Order
	stock  map[string]int
	failOn Status
}

func newMemStore() *memStore {
	return &memStore{orders: map[string]*Order{}, stock: map[string]int{}}
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	for k, o := range m.orders {
		cp := *o
		cp.Items = append([]Item(nil), o.Items...)
		c.orders[k] = &cp
	}
	for k, v := range m.stock {
		c.stock[k] = v
	}
	c.failOn = m.failOn
	return c
}

func (m *memStore) WithTx(_ context.Context, fn func(Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.clone()
	if err := fn(work); err != nil {
		return err
	}
	m.orders, m.stock = work.orders, work.stock
	return nil
}

func (m *memStore) Create(_ context.Context, o *Order) error {
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memStore) AddItem(_ context.Context, it *Item) error {
	o, ok := m.orders[it.OrderID]
	if !ok {
		return ErrNotFound
	}
	o.Items = append(o.Items, *it)
	return nil
}

func (m *memStore) filter(keep func(*Order) bool) []Order {
	out := []Order{}
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	return out
}

func (m *memStore) ListByBuyer(_ context.Context, buyerID string, _, _ int) ([]Order, error) {
	return m.filter(func(o *Order) bool { return o.BuyerID == buyerID }), nil
}

func (m *memStore) ListBySeller(_ context.Context, sellerID string, _, _ int) ([]Order, error) {
	return m.filter(func(o *Order) bool { return o.SellerID != nil && *o.SellerID == sellerID }), nil
}

func (m *memStore) GetForBuyer(_ context.Context, buyerID, id string) (*Order, error) {
	o, ok := m.orders[id]
	if !ok || o.BuyerID != buyerID {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) GetForSeller(_ context.Context, sellerID, id string) (*Order, error) {
	o, ok := m.orders[id]
	if !ok || o.SellerID == nil || *o.SellerID != sellerID {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) LockForSeller(ctx context.Context, sellerID, id string) (*Order, error) {
	return m.GetForSeller(ctx, sellerID, id)
}

func (m *memStore) UpdateStatus(_ context.Context, id string, status Status) error {
	if status == m.failOn {
		return errors.New("db down")
	}
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	return nil
}

func (m *memStore) GetItems(_ context.Context, orderID string) ([]Item, error) {
	return m.orders[orderID].Items, nil
}

func (m *memStore) Restock(_ context.Context, items []Item) error {
	for _, it := range items {
		if it.ProductID == nil {
			continue
		}
		m.stock[*it.ProductID] += it.Quantity
	}
	return nil
}

type recordedEvent struct {
	topic, key string
	event      Event
}

type fakePublisher struct {
	events []recordedEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, topic, key string, payload any) error {
	f.events = append(f.events, recordedEvent{topic, key, payload.(Event)})
	return f.err
}

const (
	buyer  = "buyer-1"
	seller = "seller-1"
)

func seed(m *memStore, status Status) *Order {
	s := seller
	kb, mouse := "p-kb", "p-mouse"
	o := &Order{
		ID: "o-1", BuyerID: buyer, SellerID: &s, Status: status,
		TotalAmount: decimal.RequireFromString("40.00"),
		Items: []Item{
			{ID: "i-1", OrderID: "o-1", ProductID: &kb, ProductName: "Keyboard", Quantity: 2, Price: decimal.RequireFromString("10.00")},
			{ID: "i-2", OrderID: "o-1", ProductID: &mouse, ProductName: "Mouse", Quantity: 1, Price: decimal.RequireFromString("20.00")},
			{ID: "i-3", OrderID: "o-1", ProductID: nil, ProductName: "Deleted", Quantity: 4, Price: decimal.RequireFromString("1.00")},
		},
	}
	m.orders[o.ID] = o
	m.stock[kb], m.stock[mouse] = 3, 0
	return o
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusProcessing))
	assert.True(t, StatusPending.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusProcessing.CanTransitionTo(StatusShipped))
	assert.True(t, StatusShipped.CanTransitionTo(StatusDelivered))
	assert.False(t, StatusShipped.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusDelivered.CanTransitionTo(StatusPending))
	assert.False(t, StatusPending.CanTransitionTo(StatusDelivered))
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusDelivered.Terminal())

	st, ok := ParseStatus(" shipped ")
	assert.True(t, ok)
	assert.Equal(t, StatusShipped, st)
	_, ok = ParseStatus("LOST")
	assert.False(t, ok)
}

func TestUpdateStatus_Advance(t *testing.T) {
	m := newMemStore()
	seed(m, StatusPending)
	pub := &fakePublisher{}
	svc := NewService(m, pub)

	o, err := svc.UpdateStatus(context.Background(), seller, "o-1", "processing")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, o.Status)
	assert.Equal(t, StatusProcessing, m.orders["o-1"].Status)
	assert.Equal(t, 3, m.stock["p-kb"], "only cancellation touches stock")

	require.Len(t, pub.events, 1)
	assert.Equal(t, TopicStatusChanged, pub.events[0].topic)
	assert.Equal(t, "o-1", pub.events[0].key)
	assert.Equal(t, StatusPending, pub.events[0].event.PreviousStatus)
	assert.Equal(t, StatusProcessing, pub.events[0].event.Status)
}

func TestUpdateStatus_CancelRestocks(t *testing.T) {
	m := newMemStore()
	seed(m, StatusPending)
	svc := NewService(m, nil)

	o, err := svc.UpdateStatus(context.Background(), seller, "o-1", "CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, 5, m.stock["p-kb"])
	assert.Equal(t, 1, m.stock["p-mouse"])
	assert.Len(t, m.stock, 2, "lines without a product are skipped")
}

func TestUpdateStatus_CancelRollsBackRestockOnFailure(t *testing.T) {
	m := newMemStore()
	seed(m, StatusProcessing)
	m.failOn = StatusCancelled
	pub := &fakePublisher{}
	svc := NewService(m, pub)

	_, err := svc.UpdateStatus(context.Background(), seller, "o-1", "CANCELLED")
	require.Error(t, err)
	assert.Equal(t, 3, m.stock["p-kb"])
	assert.Equal(t, StatusProcessing, m.orders["o-1"].Status)
	assert.Empty(t, pub.events)
}

func TestUpdateStatus_Rejections(t *testing.T) {
	m := newMemStore()
	seed(m, StatusShipped)
	pub := &fakePublisher{}
	svc := NewService(m, pub)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, seller, "o-1", "LOST")
	v, ok := validation.As(err)
	require.True(t, ok)
	assert.NotEmpty(t, v["status"])

	_, err = svc.UpdateStatus(ctx, seller, "o-1", "PENDING")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, seller, "o-1", "CANCELLED")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, "seller-2", "o-1", "DELIVERED")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateStatus(ctx, buyer, "o-1", "DELIVERED")
	assert.ErrorIs(t, err, ErrNotFound, "the buyer is not the seller")

	assert.Equal(t, StatusShipped, m.orders["o-1"].Status)
	assert.Empty(t, pub.events)
}

func TestUpdateStatus_SameStatusIsNoop(t *testing.T) {
	m := newMemStore()
	seed(m, StatusDelivered)
	pub := &fakePublisher{}
	svc := NewService(m, pub)

	o, err := svc.UpdateStatus(context.Background(), seller, "o-1", "DELIVERED")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, o.Status)
	assert.Empty(t, pub.events)
}

func TestUpdateStatus_PublishFailureIsNotFatal(t *testing.T) {
	m := newMemStore()
	seed(m, StatusPending)
	svc := NewService(m, &fakePublisher{err: errors.New("broker down")})

	o, err := svc.UpdateStatus(context.Background(), seller, "o-1", "PROCESSING")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, o.Status)
}

func TestBuyerAndSellerViews(t *testing.T) {
	m := newMemStore()
	seed(m, StatusPending)
	svc := NewService(m, nil)
	ctx := context.Background()

	mine, err := svc.ListForBuyer(ctx, buyer, 0, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = svc.GetForBuyer(ctx, "buyer-2", "o-1")
	assert.ErrorIs(t, err, ErrNotFound)

	sales, err := svc.ListSales(ctx, seller, 0, 0)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Len(t, sales[0].Items, 3)

	_, err = svc.GetSale(ctx, buyer, "o-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemLineTotal(t *testing.T) {
	it := Item{Quantity: 3, Price: decimal.RequireFromString("12.50")}
	assert.Equal(t, "37.50", it.LineTotal().StringFixed(2))
}
