// Package product provides the repository interface and PostgreSQL implementation for the catalog.
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tienda-ecom/internal/db"
)

var (
	ErrNotFound = errors.New("product not found")
)

const (
	DefaultLimit = 12
	MaxLimit     = 100
)

type Query struct {
	Q        string
	Category string
	Limit    int
	Offset   int
}

// Normalize clamps pagination the way every listing does.
func (q Query) Normalize() Query {
	if q.Limit <= 0 || q.Limit > MaxLimit {
		q.Limit = DefaultLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Q = strings.TrimSpace(q.Q)
	q.Category = strings.TrimSpace(q.Category)
	return q
}

type Repository interface {
	// List and GetPublic only see active products with stock left.
	List(ctx context.Context, q Query) ([]Product, error)
	GetPublic(ctx context.Context, id string) (*Product, error)

	ListBySeller(ctx context.Context, sellerID string, q Query) ([]Product, error)
	GetForSeller(ctx context.Context, sellerID, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, sellerID, id string) (bool, error)
	SetImage(ctx context.Context, sellerID, id, url string) error
}

type PGRepo struct{ db db.DBTX }

func NewPGRepo(db db.DBTX) *PGRepo { return &PGRepo{db: db} }

const selectProduct = `
	SELECT p.id, p.seller_id, p.category_id, COALESCE(c.slug, ''), p.name, p.description,
	       p.price::text, p.stock, p.image_url, p.is_active, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p     Product
		price string
	)
	err := row.Scan(&p.ID, &p.SellerID, &p.CategoryID, &p.CategorySlug, &p.Name, &p.Description,
		&price, &p.Stock, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("product %s price: %w", p.ID, err)
	}
	return &p, nil
}

func collect(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func one(row pgx.Row) (*Product, error) {
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.Normalize()
	rows, err := r.db.Query(ctx, selectProduct+`
		WHERE p.is_active AND p.stock > 0
		  AND ($1 = '' OR p.name ILIKE '%'||$1||'%' OR p.description ILIKE '%'||$1||'%')
		  AND ($2 = '' OR c.slug = $2)
		ORDER BY p.created_at DESC
		LIMIT $3 OFFSET $4
	`, q.Q, q.Category, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *PGRepo) GetPublic(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return one(r.db.QueryRow(ctx, selectProduct+` WHERE p.id = $1 AND p.is_active AND p.stock > 0`, id))
}

func (r *PGRepo) ListBySeller(ctx context.Context, sellerID string, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.Normalize()
	rows, err := r.db.Query(ctx, selectProduct+`
		WHERE p.seller_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, sellerID, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *PGRepo) GetForSeller(ctx context.Context, sellerID, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return one(r.db.QueryRow(ctx, selectProduct+` WHERE p.id = $1 AND p.seller_id = $2`, id, sellerID))
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO products (id, seller_id, category_id, name, description, price, stock, image_url, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
		RETURNING created_at, updated_at
	`, p.ID, p.SellerID, p.CategoryID, p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.ImageURL, p.IsActive).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// Update writes every mutable column of p. Only the owning seller's row is
// touched.
func (r *PGRepo) Update(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE products
		SET name = $3, description = $4, price = $5, stock = $6, category_id = $7, is_active = $8,
		    updated_at = NOW()
		WHERE id = $1 AND seller_id = $2
		RETURNING updated_at
	`, p.ID, p.SellerID, p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.CategoryID, p.IsActive).
		Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *PGRepo) Delete(ctx context.Context, sellerID, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1 AND seller_id=$2`, id, sellerID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) SetImage(ctx context.Context, sellerID, id, url string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `
		UPDATE products SET image_url = $3, updated_at = NOW() WHERE id = $1 AND seller_id = $2
	`, id, sellerID, url)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
