package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tienda-ecom/internal/db"
)

var (
	ErrNotFound = errors.New("order not found")
)

const (
	DefaultLimit = 12
	MaxLimit     = 100
)

func clamp(limit, offset int) (int, int) {
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	AddItem(ctx context.Context, it *Item) error
	ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]Order, error)
	GetForBuyer(ctx context.Context, buyerID, id string) (*Order, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]Order, error)
	GetForSeller(ctx context.Context, sellerID, id string) (*Order, error)
	// LockForSeller is GetForSeller holding a row lock until the transaction ends.
	LockForSeller(ctx context.Context, sellerID, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	GetItems(ctx context.Context, orderID string) ([]Item, error)
	// Restock gives the quantities of items back to products that still exist.
	Restock(ctx context.Context, items []Item) error
}

// Store adds transactions on top of Repository.
type Store interface {
	Repository
	WithTx(ctx context.Context, fn func(Repository) error) error
}

type PGRepo struct{ db db.DBTX }

func NewPGRepo(db db.DBTX) *PGRepo { return &PGRepo{db: db} }

type PGStore struct {
	*PGRepo
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{PGRepo: NewPGRepo(pool), pool: pool}
}

func (s *PGStore) WithTx(ctx context.Context, fn func(Repository) error) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(NewPGRepo(tx))
	})
}

const selectOrder = `
	SELECT id, buyer_id, seller_id, total_amount::text, status, shipping_address, created_at, updated_at
	FROM orders`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o     Order
		total string
	)
	if err := row.Scan(&o.ID, &o.BuyerID, &o.SellerID, &total, &o.Status, &o.ShippingAddress,
		&o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	t, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("order %s total: %w", o.ID, err)
	}
	o.TotalAmount = t
	o.Items = []Item{}
	return &o, nil
}

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO orders (id, buyer_id, seller_id, total_amount, status, shipping_address, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.BuyerID, o.SellerID, o.TotalAmount.StringFixed(2), o.Status, o.ShippingAddress).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *PGRepo) AddItem(ctx context.Context, it *Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, it.ID, it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.Price.StringFixed(2))
	return err
}

func (r *PGRepo) list(ctx context.Context, where string, args ...any) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, selectOrder+where, args...)
	if err != nil {
		return nil, err
	}
	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachItems loads the lines of every order in one query.
func (r *PGRepo) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price::text
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY product_name
	`, ids)
	if err != nil {
		return err
	}
	items, err := collectItems(rows)
	if err != nil {
		return err
	}
	for _, it := range items {
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return nil
}

func (r *PGRepo) one(ctx context.Context, query string, args ...any) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.GetItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]Order, error) {
	limit, offset = clamp(limit, offset)
	return r.list(ctx, ` WHERE buyer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, buyerID, limit, offset)
}

func (r *PGRepo) GetForBuyer(ctx context.Context, buyerID, id string) (*Order, error) {
	return r.one(ctx, selectOrder+` WHERE id = $1 AND buyer_id = $2`, id, buyerID)
}

func (r *PGRepo) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]Order, error) {
	limit, offset = clamp(limit, offset)
	return r.list(ctx, ` WHERE seller_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, sellerID, limit, offset)
}

func (r *PGRepo) GetForSeller(ctx context.Context, sellerID, id string) (*Order, error) {
	return r.one(ctx, selectOrder+` WHERE id = $1 AND seller_id = $2`, id, sellerID)
}

func (r *PGRepo) LockForSeller(ctx context.Context, sellerID, id string) (*Order, error) {
	return r.one(ctx, selectOrder+` WHERE id = $1 AND seller_id = $2 FOR UPDATE`, id, sellerID)
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) GetItems(ctx context.Context, orderID string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price::text
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name
	`, orderID)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]Item, error) {
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &price); err != nil {
			return nil, err
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("order item %s price: %w", it.ID, err)
		}
		it.Price = p
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) Restock(ctx context.Context, items []Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for _, it := range items {
		if it.ProductID == nil {
			continue
		}
		if _, err := r.db.Exec(ctx, `
			UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1
		`, *it.ProductID, it.Quantity); err != nil {
			return fmt.Errorf("restock %s: %w", *it.ProductID, err)
		}
	}
	return nil
}
