package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/tienda-ecom/internal/validation"
)

// memRepo keeps the (user, product) uniqueness the table enforces.
type memRepo struct {
	items    map[string]*Item
	products map[string]ProductSummary
}

func newMemRepo() *memRepo {
	return &memRepo{
		items: map[string]*Item{},
		products: map[string]ProductSummary{
			"p-a": {ID: "p-a", Name: "A", Price: decimal.RequireFromString("10.00"), Stock: 5},
			"p-b": {ID: "p-b", Name: "B", Price: decimal.RequireFromString("20.00"), Stock: 2},
		},
	}
}

func (m *memRepo) withProduct(it Item) Item {
	p := m.products[it.ProductID]
	it.Product = &p
	return it
}

func (m *memRepo) List(_ context.Context, userID string) ([]Item, error) {
	out := []Item{}
	for _, it := range m.items {
		if it.UserID == userID {
			out = append(out, m.withProduct(*it))
		}
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, userID, id string) (*Item, error) {
	it, ok := m.items[id]
	if !ok || it.UserID != userID {
		return nil, ErrNotFound
	}
	cp := m.withProduct(*it)
	return &cp, nil
}

func (m *memRepo) Upsert(_ context.Context, it *Item) (bool, error) {
	if _, ok := m.products[it.ProductID]; !ok {
		return false, ErrProductNotFound
	}
	for _, e := range m.items {
		if e.UserID == it.UserID && e.ProductID == it.ProductID {
			e.Quantity += it.Quantity
			it.ID, it.Quantity = e.ID, e.Quantity
			return false, nil
		}
	}
	cp := *it
	cp.AddedAt = time.Now()
	m.items[it.ID] = &cp
	return true, nil
}

func (m *memRepo) SetQuantity(_ context.Context, userID, id string, q int) error {
	it, ok := m.items[id]
	if !ok || it.UserID != userID {
		return ErrNotFound
	}
	it.Quantity = q
	return nil
}

func (m *memRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	it, ok := m.items[id]
	if !ok || it.UserID != userID {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

func qty(n int) *int { return &n }

func TestAdd_AccumulatesQuantity(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first, created, err := svc.Add(ctx, "u1", AddItemRequest{ProductID: "p-a", Quantity: qty(2)})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Add(ctx, "u1", AddItemRequest{ProductID: "p-a", Quantity: qty(3)})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	items, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1, "one row per (user, product)")
	assert.Equal(t, "50", items[0].TotalPrice().String())
}

func TestAdd_DefaultsAndRejections(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	it, _, err := svc.Add(ctx, "u1", AddItemRequest{ProductID: "p-b"})
	require.NoError(t, err)
	assert.Equal(t, 1, it.Quantity)

	_, _, err = svc.Add(ctx, "u1", AddItemRequest{ProductID: "p-b", Quantity: qty(0)})
	_, ok := validation.As(err)
	assert.True(t, ok)

	_, _, err = svc.Add(ctx, "u1", AddItemRequest{ProductID: "missing", Quantity: qty(1)})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAdd_NoStockCheck(t *testing.T) {
	svc := NewService(newMemRepo())
	it, _, err := svc.Add(context.Background(), "u1", AddItemRequest{ProductID: "p-b", Quantity: qty(50)})
	require.NoError(t, err)
	assert.Equal(t, 50, it.Quantity)
}

func TestUpdate_ZeroOrNegativeRemoves(t *testing.T) {
	for _, q := range []int{0, -1} {
		repo := newMemRepo()
		svc := NewService(repo)
		ctx := context.Background()

		it, _, err := svc.Add(ctx, "u1", AddItemRequest{ProductID: "p-a", Quantity: qty(2)})
		require.NoError(t, err)

		got, removed, err := svc.Update(ctx, "u1", it.ID, q)
		require.NoError(t, err)
		assert.True(t, removed)
		assert.Nil(t, got)
		assert.Empty(t, repo.items)
	}
}

func TestUpdate_OverwritesAndIsScoped(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	it, _, err := svc.Add(ctx, "u1", AddItemRequest{ProductID: "p-a", Quantity: qty(2)})
	require.NoError(t, err)

	got, removed, err := svc.Update(ctx, "u1", it.ID, 7)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 7, got.Quantity)

	_, _, err = svc.Update(ctx, "u2", it.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.Update(ctx, "u2", it.ID, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 7, repo.items[it.ID].Quantity)

	assert.ErrorIs(t, svc.Remove(ctx, "u2", it.ID), ErrNotFound)
	require.NoError(t, svc.Remove(ctx, "u1", it.ID))
}
