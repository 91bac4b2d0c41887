package catalog

import (
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	Rating      float64         `json:"rating"`
}

// Store is a read-only product list kept in seed order.
type Store struct {
	mu    sync.RWMutex
	items []Product
	byID  map[int64]int
}

// NewStore returns a catalog holding the default storefront products.
func NewStore() *Store {
	return NewStoreWith(Seed())
}

// NewStoreWith builds a catalog from products. Later duplicates of an id are
// ignored.
func NewStoreWith(products []Product) *Store {
	s := &Store{byID: make(map[int64]int, len(products))}
	for _, p := range products {
		if _, dup := s.byID[p.ID]; dup {
			continue
		}
		s.byID[p.ID] = len(s.items)
		s.items = append(s.items, p)
	}
	return s
}

func (s *Store) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store) Get(id int64) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return Product{}, false
	}
	return s.items[i], true
}

// ByCategory returns products whose category equals category exactly.
// An empty category returns everything.
func (s *Store) ByCategory(category string) []Product {
	if category == "" {
		return s.List()
	}
	return s.filter(func(p Product) bool { return p.Category == category })
}

// Search matches query case-insensitively against name and description.
func (s *Store) Search(query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.List()
	}
	return s.filter(func(p Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	})
}

// Categories lists distinct categories in first-seen order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.items {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

func (s *Store) filter(keep func(Product) bool) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.items))
	for _, p := range s.items {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
