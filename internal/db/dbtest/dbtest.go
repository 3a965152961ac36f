// Package dbtest gives repository tests a migrated PostgreSQL schema of their
// own. Tests are skipped unless TEST_DATABASE_URL points at a server.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/tienda-ecom/internal/db"
)

const envDSN = "TEST_DATABASE_URL"

// Pool returns a pool whose search_path is a fresh schema, dropped when the
// test ends, so packages can run against the same database in parallel.
func Pool(t testing.TB) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(envDSN)
	if dsn == "" {
		t.Skipf("%s not set", envDSN)
	}
	ctx := context.Background()

	admin, err := db.Connect(ctx, dsn)
	require.NoError(t, err)
	schema := "t_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.Exec(ctx, fmt.Sprintf(`CREATE SCHEMA %s`, schema))
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), fmt.Sprintf(`DROP SCHEMA %s CASCADE`, schema))
		admin.Close()
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	return pool
}

// User inserts an active user and returns its id.
func User(t testing.TB, pool *pgxpool.Pool) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, email, password_hash) VALUES ($1, $2, 'x')
	`, id, id+"@example.com")
	require.NoError(t, err)
	return id
}

type ProductOpts struct {
	Name     string
	Price    string
	Stock    int
	Inactive bool
	Category string
}

// Product inserts a product owned by seller and returns its id.
func Product(t testing.TB, pool *pgxpool.Pool, seller string, o ProductOpts) string {
	t.Helper()
	id := uuid.NewString()
	var category *string
	if o.Category != "" {
		category = &o.Category
	}
	_, err := pool.Exec(context.Background(), `
		INSERT INTO products (id, seller_id, category_id, name, price, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, seller, category, o.Name, o.Price, o.Stock, !o.Inactive)
	require.NoError(t, err)
	return id
}

// Category inserts a category and returns its id.
func Category(t testing.TB, pool *pgxpool.Pool, name, slug string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO categories (id, name, slug) VALUES ($1, $2, $3)
	`, id, name, slug)
	require.NoError(t, err)
	return id
}

// CartItem puts quantity of product in user's cart and returns the row id.
func CartItem(t testing.TB, pool *pgxpool.Pool, user, product string, quantity int) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO cart_items (id, user_id, product_id, quantity) VALUES ($1, $2, $3, $4)
	`, id, user, product, quantity)
	require.NoError(t, err)
	return id
}

// Stock reads the current stock of a product.
func Stock(t testing.TB, pool *pgxpool.Pool, product string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT stock FROM products WHERE id = $1`, product).Scan(&n))
	return n
}

// Count returns the number of rows in table.
func Count(t testing.TB, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(),
		fmt.Sprintf(`SELECT count(*) FROM %s`, table)).Scan(&n))
	return n
}
