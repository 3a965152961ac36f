package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tienda-ecom/internal/db"
)

var (
	ErrNotFound        = errors.New("cart item not found")
	ErrProductNotFound = errors.New("product not found")
)

type Repository interface {
	List(ctx context.Context, userID string) ([]Item, error)
	Get(ctx context.Context, userID, id string) (*Item, error)
	// Upsert inserts the (user, product) row or adds quantity to the existing one.
	Upsert(ctx context.Context, it *Item) (created bool, err error)
	SetQuantity(ctx context.Context, userID, id string, quantity int) error
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type PGRepo struct{ db db.DBTX }

func NewPGRepo(db db.DBTX) *PGRepo { return &PGRepo{db: db} }

const selectItem = `
	SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.added_at,
	       p.name, p.description, p.price::text, p.stock, p.image_url
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id`

func scanItem(row pgx.Row) (*Item, error) {
	var (
		it    Item
		ps    ProductSummary
		price string
	)
	if err := row.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.AddedAt,
		&ps.Name, &ps.Description, &price, &ps.Stock, &ps.ImageURL); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("cart item %s price: %w", it.ID, err)
	}
	ps.ID, ps.Price = it.ProductID, p
	it.Product = &ps
	return &it, nil
}

func (r *PGRepo) List(ctx context.Context, userID string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, selectItem+` WHERE ci.user_id = $1 ORDER BY ci.added_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	it, err := scanItem(r.db.QueryRow(ctx, selectItem+` WHERE ci.id = $1 AND ci.user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return it, err
}

func (r *PGRepo) Upsert(ctx context.Context, it *Item) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// xmax = 0 only for freshly inserted tuples.
	var created bool
	err := r.db.QueryRow(ctx, `
		INSERT INTO cart_items (id, user_id, product_id, quantity, added_at)
		VALUES ($1,$2,$3,$4,NOW())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity, added_at, (xmax = 0)
	`, it.ID, it.UserID, it.ProductID, it.Quantity).Scan(&it.ID, &it.Quantity, &it.AddedAt, &created)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return false, ErrProductNotFound
	}
	return created, err
}

func (r *PGRepo) SetQuantity(ctx context.Context, userID, id string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE cart_items SET quantity = $3 WHERE id = $1 AND user_id = $2`, id, userID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
