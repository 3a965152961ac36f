package order

import (
	"context"
	"fmt"
	"log"

	"github.com/MikeMC777/tienda-ecom/internal/validation"
)

// Publisher emits domain events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

type Service struct {
	store Store
	pub   Publisher
}

func NewService(store Store, pub Publisher) *Service {
	return &Service{store: store, pub: pub}
}

func (s *Service) ListForBuyer(ctx context.Context, buyerID string, limit, offset int) ([]Order, error) {
	return s.store.ListByBuyer(ctx, buyerID, limit, offset)
}

func (s *Service) GetForBuyer(ctx context.Context, buyerID, id string) (*Order, error) {
	return s.store.GetForBuyer(ctx, buyerID, id)
}

func (s *Service) ListSales(ctx context.Context, sellerID string, limit, offset int) ([]Order, error) {
	return s.store.ListBySeller(ctx, sellerID, limit, offset)
}

func (s *Service) GetSale(ctx context.Context, sellerID, id string) (*Order, error) {
	return s.store.GetForSeller(ctx, sellerID, id)
}

// UpdateStatus moves one of the seller's orders to raw. Cancelling gives the
// ordered quantities back to stock in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, sellerID, id, raw string) (*Order, error) {
	next, ok := ParseStatus(raw)
	if !ok {
		return nil, validation.Field("status", fmt.Sprintf("%q is not a valid choice", raw))
	}

	var (
		out      *Order
		previous Status
	)
	err := s.store.WithTx(ctx, func(repo Repository) error {
		o, err := repo.LockForSeller(ctx, sellerID, id)
		if err != nil {
			return err
		}
		previous = o.Status
		if o.Status == next {
			out = o
			return nil
		}
		if !o.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, next)
		}
		if next == StatusCancelled {
			if err := repo.Restock(ctx, o.Items); err != nil {
				return err
			}
		}
		if err := repo.UpdateStatus(ctx, o.ID, next); err != nil {
			return err
		}
		o.Status = next
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous != next {
		log.Printf("[orders] order=%s status %s -> %s", out.ID, previous, next)
		s.publish(ctx, TopicStatusChanged, out, previous)
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, topic string, o *Order, previous Status) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, topic, o.ID, NewEvent(topic, o, previous)); err != nil {
		log.Printf("[orders] publish %s order=%s: %v", topic, o.ID, err)
	}
}
