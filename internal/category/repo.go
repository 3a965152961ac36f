package category

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MikeMC777/tienda-ecom/internal/db"
	"github.com/MikeMC777/tienda-ecom/internal/validation"
)

var (
	ErrNotFound     = errors.New("category not found")
	ErrAlreadyExist = errors.New("category with this name or slug already exists")
)

type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
}

type PGRepo struct{ db db.DBTX }

func NewPGRepo(db db.DBTX) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO categories (id, name, slug, description) VALUES ($1,$2,$3,$4)
	`, c.ID, c.Name, c.Slug, c.Description)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExist
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Category
	err := r.db.QueryRow(ctx, `SELECT id, name, slug, description FROM categories WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, name, slug, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// New builds a category from a create request, deriving the slug from the
// name when none was given.
func New(in CreateCategoryRequest) (*Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validation.Field("name", "this field is required")
	}
	s := strings.TrimSpace(in.Slug)
	if s == "" {
		s = slug.Make(name)
	} else if !slug.IsSlug(s) {
		return nil, validation.Field("slug", "enter a valid slug of letters, numbers, underscores or hyphens")
	}
	if s == "" {
		return nil, validation.Field("slug", "could not derive a slug from name")
	}
	return &Category{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        s,
		Description: strings.TrimSpace(in.Description),
	}, nil
}
