package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/tienda-ecom/internal/db/dbtest"
)

// placeOrder writes a pending order with one line per product.
func placeOrder(t *testing.T, pool *pgxpool.Pool, buyer, seller string, lines map[string]int) *Order {
	t.Helper()
	ctx := context.Background()
	repo := NewPGRepo(pool)
	o := &Order{
		ID: uuid.NewString(), BuyerID: buyer, SellerID: &seller, Status: StatusPending,
		TotalAmount: decimal.RequireFromString("10.00"), ShippingAddress: "Main St 1",
	}
	require.NoError(t, repo.Create(ctx, o))
	for pid, qty := range lines {
		pid := pid
		require.NoError(t, repo.AddItem(ctx, &Item{
			ID: uuid.NewString(), OrderID: o.ID, ProductID: &pid, ProductName: "item",
			Quantity: qty, Price: decimal.RequireFromString("1.00"),
		}))
	}
	return o
}

func TestPGCancel_RestocksInTransaction(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()
	buyer, seller := dbtest.User(t, pool), dbtest.User(t, pool)
	kb := dbtest.Product(t, pool, seller, dbtest.ProductOpts{Name: "Keyboard", Price: "1.00", Stock: 3})
	gone := dbtest.Product(t, pool, seller, dbtest.ProductOpts{Name: "Gone", Price: "1.00", Stock: 1})
	o := placeOrder(t, pool, buyer, seller, map[string]int{kb: 2, gone: 1})
	_, err := pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, gone)
	require.NoError(t, err)

	svc := NewService(NewPGStore(pool), nil)
	_, err = svc.UpdateStatus(ctx, buyer, o.ID, "CANCELLED")
	assert.ErrorIs(t, err, ErrNotFound, "only the seller may change the status")

	got, err := svc.UpdateStatus(ctx, seller, o.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, 5, dbtest.Stock(t, pool, kb))

	_, err = svc.UpdateStatus(ctx, seller, o.ID, "PROCESSING")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 5, dbtest.Stock(t, pool, kb))
}

func TestPGViews_AttachItems(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()
	repo := NewPGRepo(pool)
	buyer, seller := dbtest.User(t, pool), dbtest.User(t, pool)
	kb := dbtest.Product(t, pool, seller, dbtest.ProductOpts{Name: "Keyboard", Price: "1.00", Stock: 3})
	first := placeOrder(t, pool, buyer, seller, map[string]int{kb: 1})
	second := placeOrder(t, pool, buyer, seller, map[string]int{kb: 2})

	mine, err := repo.ListByBuyer(ctx, buyer, 0, 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, o := range mine {
		assert.Len(t, o.Items, 1)
	}

	sales, err := repo.ListBySeller(ctx, seller, 0, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, []string{sales[0].ID, sales[1].ID})

	_, err = repo.GetForBuyer(ctx, seller, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	o, err := repo.GetForSeller(ctx, seller, second.ID)
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
}
