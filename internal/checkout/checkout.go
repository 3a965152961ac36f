// Package checkout turns a buyer's cart into one order per seller inside a
// single transaction.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tienda-ecom/internal/order"
	"github.com/MikeMC777/tienda-ecom/internal/validation"
)

var (
	ErrCartEmpty            = errors.New("your cart is empty")
	ErrProductWithoutSeller = errors.New("product has no seller")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrTotalTooLarge        = errors.New("order total exceeds the maximum amount")
)

// maxTotal is the largest amount a NUMERIC(10,2) total can hold.
var maxTotal = decimal.New(1, 8).Sub(decimal.New(1, -2))

type Request struct {
	ShippingAddress string `json:"shipping_address" example:"Jl. Merdeka 1, Jakarta"`
}

type Service struct {
	store Store
	pub   order.Publisher
}

func NewService(store Store, pub order.Publisher) *Service {
	return &Service{store: store, pub: pub}
}

type group struct {
	sellerID string
	lines    []Line
}

// bySeller partitions lines per seller, keeping sellers in the order their
// first line appears.
func bySeller(lines []Line) []group {
	var groups []group
	index := map[string]int{}
	for _, l := range lines {
		i, ok := index[*l.SellerID]
		if !ok {
			i = len(groups)
			index[*l.SellerID] = i
			groups = append(groups, group{sellerID: *l.SellerID})
		}
		groups[i].lines = append(groups[i].lines, l)
	}
	return groups
}

// Checkout places the buyer's cart. Either every order is created, stock is
// decremented and the cart is emptied, or nothing changes.
func (s *Service) Checkout(ctx context.Context, buyerID string, in Request) ([]order.Order, error) {
	address := strings.TrimSpace(in.ShippingAddress)
	if address == "" {
		return nil, validation.Field("shipping_address", "shipping address is required")
	}

	var placed []order.Order
	err := s.store.WithTx(ctx, func(tx Tx) error {
		placed = nil

		lines, err := tx.LockCart(ctx, buyerID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(lines) == 0 {
			return ErrCartEmpty
		}
		for _, l := range lines {
			if l.SellerID == nil {
				return fmt.Errorf("%w: %s", ErrProductWithoutSeller, l.ProductName)
			}
		}

		for _, g := range bySeller(lines) {
			o, err := placeOrder(ctx, tx, buyerID, address, g)
			if err != nil {
				return err
			}
			placed = append(placed, *o)
		}
		ids := make([]string, len(lines))
		for i, l := range lines {
			ids[i] = l.CartItemID
		}
		return tx.ClearCart(ctx, ids)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[checkout] buyer=%s orders=%d", buyerID, len(placed))
	for i := range placed {
		s.publish(ctx, &placed[i])
	}
	return placed, nil
}

func placeOrder(ctx context.Context, tx Tx, buyerID, address string, g group) (*order.Order, error) {
	total := decimal.Zero
	for _, l := range g.lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	if total.GreaterThan(maxTotal) {
		return nil, fmt.Errorf("%w (%s)", ErrTotalTooLarge, maxTotal.StringFixed(2))
	}

	seller := g.sellerID
	o := &order.Order{
		ID:              uuid.NewString(),
		BuyerID:         buyerID,
		SellerID:        &seller,
		TotalAmount:     total,
		Status:          order.StatusPending,
		ShippingAddress: address,
		Items:           []order.Item{},
	}
	if err := tx.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for _, l := range g.lines {
		pid := l.ProductID
		it := order.Item{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductID:   &pid,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.Price,
		}
		if err := tx.AddItem(ctx, &it); err != nil {
			return nil, fmt.Errorf("add order item: %w", err)
		}
		if l.Stock < l.Quantity {
			return nil, fmt.Errorf("%w for product %s", ErrInsufficientStock, l.ProductName)
		}
		if err := tx.DecrementStock(ctx, l.ProductID, l.Quantity); err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return o, nil
}

func (s *Service) publish(ctx context.Context, o *order.Order) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, order.TopicCreated, o.ID, order.NewEvent(order.TopicCreated, o, "")); err != nil {
		log.Printf("[checkout] publish order=%s: %v", o.ID, err)
	}
}
