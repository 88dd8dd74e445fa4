// Package backend is the development storefront API: an in-memory product
// store behind the same REST surface the production service exposes. It
// exists so the client can run, and be tested, without the real backend.
package backend

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/arozhkov/storefront/internal/store/domain"
)

var ErrEmptyOrder = errors.New("order has no items")

// Store holds the catalog and accepts orders. Orders are validated against
// current product availability and pricing; the returned total is
// authoritative.
type Store struct {
	mu       sync.Mutex
	products []domain.Product
	orders   []placedOrder
}

type placedOrder struct {
	id    string
	order domain.Order
	total int64
}

// NewStore seeds the store with products.
func NewStore(products []domain.Product) *Store {
	return &Store{products: products}
}

// Products returns a copy of the catalog, optionally narrowed by category
// and a case-insensitive title substring.
func (s *Store) Products(category domain.Category, query string) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Title), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Product looks up a single catalog entry.
func (s *Store) Product(id string) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Remove drops a product from the catalog. Used to exercise the client's
// staleness handling during development.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return true
		}
	}
	return false
}

// PlaceOrder validates and records an order, returning its id and the
// recomputed total. Error messages are part of the API contract: the client
// classifies failures by their content.
func (s *Store) PlaceOrder(order domain.Order) (domain.OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(order.Items) == 0 {
		return domain.OrderResult{}, ErrEmptyOrder
	}
	if !domain.KnownPayment(order.Payment) {
		return domain.OrderResult{}, fmt.Errorf("unknown payment method %q", order.Payment)
	}

	var total int64
	for _, id := range order.Items {
		p, ok := s.lookup(id)
		if !ok || !p.Purchasable() {
			return domain.OrderResult{}, fmt.Errorf("item %s is no longer available", id)
		}
		total += p.PriceValue()
	}
	if order.Total != total {
		return domain.OrderResult{}, errors.New("price of the order is wrong")
	}

	placed := placedOrder{id: uuid.NewString(), order: order, total: total}
	s.orders = append(s.orders, placed)
	return domain.OrderResult{ID: placed.id, Total: placed.total}, nil
}

func (s *Store) lookup(id string) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// OrderCount reports how many orders were accepted.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}
