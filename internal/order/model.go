package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

type Order struct {
	ID              string          `json:"id"`
	BuyerID         string          `json:"user"`
	SellerID        *string         `json:"seller"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          Status          `json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []Item          `json:"items"`
}

// Item is an order line. Price is the unit price at the time of purchase;
// ProductID becomes nil when the product is later deleted.
type Item struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   *string         `json:"product"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// UpdateStatusRequest is the only write a seller can make on a sale.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"PROCESSING"`
}

// Event is published after an order is created or changes status.
type Event struct {
	Type           string          `json:"event_type"`
	OrderID        string          `json:"order_id"`
	BuyerID        string          `json:"buyer_id"`
	SellerID       *string         `json:"seller_id"`
	Status         Status          `json:"status"`
	PreviousStatus Status          `json:"previous_status,omitempty"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

const (
	TopicCreated       = "order.created"
	TopicStatusChanged = "order.status_changed"
)

func NewEvent(topic string, o *Order, previous Status) Event {
	return Event{
		Type:           topic,
		OrderID:        o.ID,
		BuyerID:        o.BuyerID,
		SellerID:       o.SellerID,
		Status:         o.Status,
		PreviousStatus: previous,
		TotalAmount:    o.TotalAmount,
		OccurredAt:     time.Now().UTC(),
	}
}
