package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/MikeMC777/tienda-ecom/internal/validation"
)

// Service applies the cart rules for one principal at a time. Stock is not
// checked here; availability is enforced at checkout.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) List(ctx context.Context, userID string) ([]Item, error) {
	return s.repo.List(ctx, userID)
}

// Add puts quantity units of productID in the user's cart, incrementing the
// existing row if there is one. created reports whether a new row was made.
func (s *Service) Add(ctx context.Context, userID string, in AddItemRequest) (it *Item, created bool, err error) {
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 1 {
		return nil, false, validation.Field("quantity", "ensure this value is greater than or equal to 1")
	}

	it = &Item{ID: uuid.NewString(), UserID: userID, ProductID: in.ProductID, Quantity: qty}
	if created, err = s.repo.Upsert(ctx, it); err != nil {
		return nil, false, err
	}
	full, err := s.repo.Get(ctx, userID, it.ID)
	if err != nil {
		return nil, false, err
	}
	return full, created, nil
}

// Update overwrites the quantity of one of the user's rows. A quantity of zero
// or less removes the row instead, reported by removed.
func (s *Service) Update(ctx context.Context, userID, id string, quantity int) (it *Item, removed bool, err error) {
	if quantity <= 0 {
		return nil, true, s.Remove(ctx, userID, id)
	}
	if err := s.repo.SetQuantity(ctx, userID, id, quantity); err != nil {
		return nil, false, err
	}
	it, err = s.repo.Get(ctx, userID, id)
	return it, false, err
}

func (s *Service) Remove(ctx context.Context, userID, id string) error {
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
