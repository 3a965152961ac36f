package main

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeMC777/tienda-ecom/internal/cart"
	"github.com/MikeMC777/tienda-ecom/internal/category"
	"github.com/MikeMC777/tienda-ecom/internal/checkout"
	"github.com/MikeMC777/tienda-ecom/internal/order"
	"github.com/MikeMC777/tienda-ecom/internal/product"
	"github.com/MikeMC777/tienda-ecom/internal/user"
)

//
// ===== IN-MEMORY STORE shared by every stub =====
//

type world struct {
	users      map[string]*user.User
	categories map[string]category.Category
	products   map[string]*product.Product
	cart       []*cart.Item
	orders     []*order.Order
}

func newWorld() *world {
	return &world{
		users:      map[string]*user.User{},
		categories: map[string]category.Category{},
		products:   map[string]*product.Product{},
	}
}

// ----- user.Repository -----

type userStub struct{ w *world }

func (s userStub) Create(_ context.Context, u *user.User) error {
	for _, e := range s.w.users {
		if e.Email == u.Email {
			return user.ErrAlreadyExist
		}
	}
	cp := *u
	cp.DateJoined = time.Now().UTC()
	s.w.users[u.ID] = &cp
	return nil
}

func (s userStub) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := s.w.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s userStub) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range s.w.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s userStub) UpdateProfile(_ context.Context, id, first, last string) error {
	u, ok := s.w.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.FirstName, u.LastName = first, last
	return nil
}

func (s userStub) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := s.w.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

// ----- category.Repository -----

type categoryStub struct{ w *world }

func (s categoryStub) Create(_ context.Context, c *category.Category) error {
	for _, e := range s.w.categories {
		if e.Name == c.Name || e.Slug == c.Slug {
			return category.ErrAlreadyExist
		}
	}
	s.w.categories[c.ID] = *c
	return nil
}

func (s categoryStub) GetByID(_ context.Context, id string) (*category.Category, error) {
	c, ok := s.w.categories[id]
	if !ok {
		return nil, category.ErrNotFound
	}
	return &c, nil
}

func (s categoryStub) List(context.Context) ([]category.Category, error) {
	out := []category.Category{}
	for _, c := range s.w.categories {
		out = append(out, c)
	}
	return out, nil
}

// ----- product.Repository -----

type productStub struct {
	w         *world
	lastQuery product.Query
}

func (s *productStub) List(_ context.Context, q product.Query) ([]product.Product, error) {
	s.lastQuery = q
	out := []product.Product{}
	for _, p := range s.w.products {
		if !p.IsActive || p.Stock <= 0 {
			continue
		}
		if q.Q != "" && !containsFold(p.Name, q.Q) && !containsFold(p.Description, q.Q) {
			continue
		}
		if q.Category != "" && p.CategorySlug != q.Category {
			continue
		}
		out = append(out, *p)
	}
	start := q.Offset
	if start > len(out) {
		return []product.Product{}, nil
	}
	end := start + q.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (s *productStub) GetPublic(_ context.Context, id string) (*product.Product, error) {
	p, ok := s.w.products[id]
	if !ok || !p.IsActive || p.Stock <= 0 {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *productStub) ListBySeller(_ context.Context, sellerID string, _ product.Query) ([]product.Product, error) {
	out := []product.Product{}
	for _, p := range s.w.products {
		if p.SellerID != nil && *p.SellerID == sellerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *productStub) GetForSeller(_ context.Context, sellerID, id string) (*product.Product, error) {
	p, ok := s.w.products[id]
	if !ok || p.SellerID == nil || *p.SellerID != sellerID {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *productStub) Create(_ context.Context, p *product.Product) error {
	cp := *p
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	s.w.products[p.ID] = &cp
	return nil
}

func (s *productStub) Update(_ context.Context, p *product.Product) error {
	if _, ok := s.w.products[p.ID]; !ok {
		return product.ErrNotFound
	}
	cp := *p
	s.w.products[p.ID] = &cp
	return nil
}

func (s *productStub) Delete(_ context.Context, sellerID, id string) (bool, error) {
	p, ok := s.w.products[id]
	if !ok || p.SellerID == nil || *p.SellerID != sellerID {
		return false, nil
	}
	delete(s.w.products, id)
	return true, nil
}

func (s *productStub) SetImage(_ context.Context, sellerID, id, url string) error {
	p, ok := s.w.products[id]
	if !ok || p.SellerID == nil || *p.SellerID != sellerID {
		return product.ErrNotFound
	}
	p.ImageURL = url
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// ----- cart.Repository -----

type cartStub struct{ w *world }

func (s cartStub) summary(productID string) *cart.ProductSummary {
	p := s.w.products[productID]
	return &cart.ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock}
}

func (s cartStub) List(_ context.Context, userID string) ([]cart.Item, error) {
	out := []cart.Item{}
	for _, it := range s.w.cart {
		if it.UserID == userID {
			cp := *it
			cp.Product = s.summary(it.ProductID)
			out = append(out, cp)
		}
	}
	return out, nil
}

func (s cartStub) Get(_ context.Context, userID, id string) (*cart.Item, error) {
	for _, it := range s.w.cart {
		if it.ID == id && it.UserID == userID {
			cp := *it
			cp.Product = s.summary(it.ProductID)
			return &cp, nil
		}
	}
	return nil, cart.ErrNotFound
}

func (s cartStub) Upsert(_ context.Context, in *cart.Item) (bool, error) {
	if _, ok := s.w.products[in.ProductID]; !ok {
		return false, cart.ErrProductNotFound
	}
	for _, it := range s.w.cart {
		if it.UserID == in.UserID && it.ProductID == in.ProductID {
			it.Quantity += in.Quantity
			in.ID, in.Quantity = it.ID, it.Quantity
			return false, nil
		}
	}
	cp := *in
	cp.AddedAt = time.Now()
	s.w.cart = append(s.w.cart, &cp)
	return true, nil
}

func (s cartStub) SetQuantity(_ context.Context, userID, id string, qty int) error {
	for _, it := range s.w.cart {
		if it.ID == id && it.UserID == userID {
			it.Quantity = qty
			return nil
		}
	}
	return cart.ErrNotFound
}

func (s cartStub) Delete(_ context.Context, userID, id string) (bool, error) {
	for i, it := range s.w.cart {
		if it.ID == id && it.UserID == userID {
			s.w.cart = append(s.w.cart[:i], s.w.cart[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ----- checkout.Store (no rollback; handler tests only cover the happy path
// and rejections that happen before any write) -----

type checkoutStub struct{ w *world }

func (s checkoutStub) WithTx(_ context.Context, fn func(checkout.Tx) error) error { return fn(s) }

func (s checkoutStub) LockCart(_ context.Context, buyerID string) ([]checkout.Line, error) {
	var out []checkout.Line
	for _, it := range s.w.cart {
		if it.UserID != buyerID {
			continue
		}
		p := s.w.products[it.ProductID]
		out = append(out, checkout.Line{
			CartItemID: it.ID, ProductID: p.ID, ProductName: p.Name, SellerID: p.SellerID,
			Price: p.Price, Stock: p.Stock, Quantity: it.Quantity,
		})
	}
	return out, nil
}

func (s checkoutStub) CreateOrder(_ context.Context, o *order.Order) error {
	cp := *o
	cp.CreatedAt = time.Now().UTC()
	s.w.orders = append(s.w.orders, &cp)
	return nil
}

func (s checkoutStub) AddItem(ctx context.Context, it *order.Item) error {
	return orderStub{s.w}.AddItem(ctx, it)
}

func (s checkoutStub) DecrementStock(_ context.Context, id string, qty int) error {
	s.w.products[id].Stock -= qty
	return nil
}

func (s checkoutStub) ClearCart(_ context.Context, ids []string) error {
	kept := s.w.cart[:0]
	for _, it := range s.w.cart {
		if !slices.Contains(ids, it.ID) {
			kept = append(kept, it)
		}
	}
	s.w.cart = kept
	return nil
}

// ----- order.Store -----

type orderStub struct{ w *world }

func (s orderStub) WithTx(_ context.Context, fn func(order.Repository) error) error { return fn(s) }

func (s orderStub) Create(_ context.Context, o *order.Order) error {
	cp := *o
	s.w.orders = append(s.w.orders, &cp)
	return nil
}

func (s orderStub) AddItem(_ context.Context, it *order.Item) error {
	for _, o := range s.w.orders {
		if o.ID == it.OrderID {
			o.Items = append(o.Items, *it)
			return nil
		}
	}
	return order.ErrNotFound
}

func (s orderStub) find(keep func(*order.Order) bool) []order.Order {
	out := []order.Order{}
	for _, o := range s.w.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	return out
}

func (s orderStub) ListByBuyer(_ context.Context, buyerID string, _, _ int) ([]order.Order, error) {
	return s.find(func(o *order.Order) bool { return o.BuyerID == buyerID }), nil
}

func (s orderStub) ListBySeller(_ context.Context, sellerID string, _, _ int) ([]order.Order, error) {
	return s.find(func(o *order.Order) bool { return o.SellerID != nil && *o.SellerID == sellerID }), nil
}

func (s orderStub) GetForBuyer(_ context.Context, buyerID, id string) (*order.Order, error) {
	found := s.find(func(o *order.Order) bool { return o.ID == id && o.BuyerID == buyerID })
	if len(found) == 0 {
		return nil, order.ErrNotFound
	}
	return &found[0], nil
}

func (s orderStub) GetForSeller(_ context.Context, sellerID, id string) (*order.Order, error) {
	found := s.find(func(o *order.Order) bool { return o.ID == id && o.SellerID != nil && *o.SellerID == sellerID })
	if len(found) == 0 {
		return nil, order.ErrNotFound
	}
	return &found[0], nil
}

func (s orderStub) LockForSeller(ctx context.Context, sellerID, id string) (*order.Order, error) {
	return s.GetForSeller(ctx, sellerID, id)
}

func (s orderStub) UpdateStatus(_ context.Context, id string, status order.Status) error {
	for _, o := range s.w.orders {
		if o.ID == id {
			o.Status = status
			return nil
		}
	}
	return order.ErrNotFound
}

func (s orderStub) GetItems(_ context.Context, orderID string) ([]order.Item, error) {
	for _, o := range s.w.orders {
		if o.ID == orderID {
			return o.Items, nil
		}
	}
	return nil, order.ErrNotFound
}

func (s orderStub) Restock(_ context.Context, items []order.Item) error {
	for _, it := range items {
		if it.ProductID == nil {
			continue
		}
		if p, ok := s.w.products[*it.ProductID]; ok {
			p.Stock += it.Quantity
		}
	}
	return nil
}

func newID() string { return uuid.NewString() }
