package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           string          `json:"id"`
	SellerID     *string         `json:"seller_id"`
	CategoryID   *string         `json:"category_id"`
	CategorySlug string          `json:"category,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	ImageURL     string          `json:"image,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	// search query applied
	Q string `json:"q,omitempty"`
	// category slug applied
	Category string `json:"category,omitempty"`
	// limit applied
	Limit int `json:"limit"`
	// offset applied
	Offset int `json:"offset"`
	Items  []Product `json:"items"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name        string  `json:"name"        binding:"required,max=255" example:"Mechanical Keyboard"`
	Description string  `json:"description" example:"RGB 60%"`
	Price       string  `json:"price"       binding:"required"         example:"199.90"`
	Stock       int     `json:"stock"       binding:"min=0"            example:"10"`
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateProductRequest payload of partial update. Omitted fields are left
// unchanged.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name        *string `json:"name"        binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Stock       *int    `json:"stock"`
	CategoryID  *string `json:"category_id" binding:"omitempty,uuid"`
	IsActive    *bool   `json:"is_active"`
}
