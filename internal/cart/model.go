package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductSummary is the product view embedded in cart rows.
type ProductSummary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image,omitempty"`
}

type Item struct {
	ID        string          `json:"id"`
	UserID    string          `json:"-"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
	Product   *ProductSummary `json:"product,omitempty"`
}

// TotalPrice is quantity times the product's current price.
func (it Item) TotalPrice() decimal.Decimal {
	if it.Product == nil {
		return decimal.Zero
	}
	return it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ItemResponse is the read shape of a cart row.
// swagger:model CartItem
type ItemResponse struct {
	ID         string          `json:"id"`
	Product    *ProductSummary `json:"product"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (it Item) Response() ItemResponse {
	return ItemResponse{ID: it.ID, Product: it.Product, Quantity: it.Quantity, TotalPrice: it.TotalPrice()}
}

// AddItemRequest payload of cart add. Quantity defaults to 1.
// swagger:model AddItemRequest
type AddItemRequest struct {
	ProductID string `json:"product" binding:"required,uuid" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  *int   `json:"quantity" example:"2"`
}

// UpdateItemRequest payload of cart update. Zero or negative removes the row.
// swagger:model UpdateItemRequest
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required" example:"3"`
}
