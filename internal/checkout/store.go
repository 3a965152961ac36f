package checkout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tienda-ecom/internal/db"
	"github.com/MikeMC777/tienda-ecom/internal/order"
)

// Line is a cart row joined to its product as read under lock.
type Line struct {
	CartItemID  string
	ProductID   string
	ProductName string
	SellerID    *string
	Price       decimal.Decimal
	Stock       int
	Quantity    int
}

// Tx is the set of writes a checkout performs. Every call belongs to the same
// transaction.
type Tx interface {
	// LockCart returns the buyer's cart lines. The buyer, the cart rows and
	// the products they reference stay locked until the transaction ends.
	LockCart(ctx context.Context, buyerID string) ([]Line, error)
	CreateOrder(ctx context.Context, o *order.Order) error
	AddItem(ctx context.Context, it *order.Item) error
	DecrementStock(ctx context.Context, productID string, quantity int) error
	// ClearCart deletes the given cart rows, the ones LockCart returned.
	ClearCart(ctx context.Context, itemIDs []string) error
}

type Store interface {
	WithTx(ctx context.Context, fn func(Tx) error) error
}

type PGStore struct{ pool *pgxpool.Pool }

func NewPGStore(pool *pgxpool.Pool) *PGStore { return &PGStore{pool: pool} }

func (s *PGStore) WithTx(ctx context.Context, fn func(Tx) error) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx, PGRepo: order.NewPGRepo(tx)})
	})
}

type pgTx struct {
	tx pgx.Tx
	*order.PGRepo
}

func (t *pgTx) LockCart(ctx context.Context, buyerID string) ([]Line, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// The buyer row serializes checkouts of the same cart: a second one waits
	// here and then reads the cart the first one left behind.
	var one int
	err := t.tx.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`, buyerID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock buyer: %w", err)
	}

	// Products are locked in id order so two buyers sharing products cannot
	// deadlock. Lines are then returned in the order they were added.
	rows, err := t.tx.Query(ctx, `
		SELECT ci.id, p.id, p.name, p.seller_id, p.price::text, p.stock, ci.quantity, ci.added_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY p.id
		FOR UPDATE OF ci, p
	`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type row struct {
		Line
		added time.Time
	}
	var all []row
	for rows.Next() {
		var (
			r     row
			price string
		)
		if err := rows.Scan(&r.CartItemID, &r.ProductID, &r.ProductName, &r.SellerID, &price,
			&r.Stock, &r.Quantity, &r.added); err != nil {
			return nil, err
		}
		if r.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("product %s price: %w", r.ProductID, err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(all, func(a, b row) int { return a.added.Compare(b.added) })
	lines := make([]Line, len(all))
	for i, r := range all {
		lines[i] = r.Line
	}
	return lines, nil
}

func (t *pgTx) CreateOrder(ctx context.Context, o *order.Order) error {
	return t.PGRepo.Create(ctx, o)
}

func (t *pgTx) DecrementStock(ctx context.Context, productID string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := t.tx.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1
	`, productID, quantity)
	return err
}

func (t *pgTx) ClearCart(ctx context.Context, itemIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := t.tx.Exec(ctx, `DELETE FROM cart_items WHERE id = ANY($1::uuid[])`, itemIDs)
	return err
}
