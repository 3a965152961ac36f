package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tienda-ecom/internal/category"
	"github.com/MikeMC777/tienda-ecom/internal/validation"
)

// Uploader stores product images and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Service carries the seller-side product rules on top of Repository.
type Service struct {
	repo       Repository
	categories category.Repository
	uploader   Uploader
}

func NewService(repo Repository, categories category.Repository, uploader Uploader) *Service {
	return &Service{repo: repo, categories: categories, uploader: uploader}
}

func parsePrice(v validation.Errors, raw string) decimal.Decimal {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	switch {
	case err != nil:
		v.Add("price", "a valid number is required")
	case !price.GreaterThan(decimal.Zero):
		v.Add("price", "price must be greater than zero")
	case price.Exponent() < -2 && !price.Equal(price.Round(2)):
		v.Add("price", "ensure that there are no more than 2 decimal places")
	case price.GreaterThanOrEqual(decimal.New(1, 8)):
		v.Add("price", "ensure that there are no more than 8 digits before the decimal point")
	}
	return price.Round(2)
}

func (s *Service) checkCategory(ctx context.Context, v validation.Errors, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	if _, err := s.categories.GetByID(ctx, *id); err != nil {
		if errors.Is(err, category.ErrNotFound) {
			v.Add("category_id", "category does not exist")
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) Create(ctx context.Context, sellerID string, in CreateProductRequest) (*Product, error) {
	v := validation.Errors{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		v.Add("name", "this field is required")
	}
	price := parsePrice(v, in.Price)
	if in.Stock < 0 {
		v.Add("stock", "stock must be zero or positive")
	}
	if err := s.checkCategory(ctx, v, in.CategoryID); err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	seller := sellerID
	p := &Product{
		ID:          uuid.NewString(),
		SellerID:    &seller,
		CategoryID:  nonEmpty(in.CategoryID),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		Stock:       in.Stock,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, sellerID, id string, in UpdateProductRequest) (*Product, error) {
	p, err := s.repo.GetForSeller(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	v := validation.Errors{}
	if in.Name != nil {
		if p.Name = strings.TrimSpace(*in.Name); p.Name == "" {
			v.Add("name", "this field may not be blank")
		}
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = parsePrice(v, *in.Price)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			v.Add("stock", "stock must be zero or positive")
		}
		p.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, v, in.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = nonEmpty(in.CategoryID)
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, sellerID, id string) error {
	ok, err := s.repo.Delete(ctx, sellerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// SetImage uploads body as the product image of one of the seller's products.
func (s *Service) SetImage(ctx context.Context, sellerID, id, contentType string, body io.Reader) (*Product, error) {
	ext, ok := imageTypes[contentType]
	if !ok {
		return nil, validation.Field("image", "upload a valid image (jpeg, png, webp or gif)")
	}
	if s.uploader == nil {
		return nil, errors.New("image storage is not configured")
	}
	p, err := s.repo.GetForSeller(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	key := path.Join("products", p.ID, uuid.NewString()+ext)
	url, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	if err := s.repo.SetImage(ctx, sellerID, id, url); err != nil {
		return nil, err
	}
	p.ImageURL = url
	return p, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
