// Package cart keeps the shopping cart: an ordered list of products with
// quantities, persisted under the "cart" key.
package cart

import (
	"slices"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/internal/observable"
	"Storefront/internal/storage"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

type Store struct {
	mu      sync.Mutex
	storage *storage.Adapter
	log     *zap.Logger
	items   *observable.Subject[[]Item]
}

// NewStore rehydrates the cart from st. A missing or unreadable record
// starts an empty cart.
func NewStore(st *storage.Adapter, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}

	var saved []Item
	if st.Read(storage.KeyCart, &saved) {
		saved = normalize(saved)
	}

	return &Store{
		storage: st,
		log:     log,
		items:   observable.NewSubject(saved),
	}
}

// normalize drops entries that violate cart invariants, merging duplicate
// product ids into the first occurrence.
func normalize(in []Item) []Item {
	out := make([]Item, 0, len(in))
	pos := make(map[int64]int, len(in))
	for _, it := range in {
		if it.Quantity < 1 {
			continue
		}
		if i, ok := pos[it.Product.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		pos[it.Product.ID] = len(out)
		out = append(out, it)
	}
	return out
}

func (s *Store) AddToCart(p catalog.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.snapshot()
	if i := indexOf(items, p.ID); i >= 0 {
		items[i].Quantity += quantity
	} else {
		items = append(items, Item{Product: p, Quantity: quantity})
	}
	return s.commit(items)
}

func (s *Store) RemoveFromCart(productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := slices.DeleteFunc(s.snapshot(), func(it Item) bool {
		return it.Product.ID == productID
	})
	return s.commit(items)
}

// UpdateQuantity sets the quantity of a product already in the cart. A
// quantity of zero or less removes it. Unknown products are ignored.
func (s *Store) UpdateQuantity(productID int64, quantity int) error {
	if quantity <= 0 {
		return s.RemoveFromCart(productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.snapshot()
	i := indexOf(items, productID)
	if i < 0 {
		return nil
	}
	items[i].Quantity = quantity
	return s.commit(items)
}

func (s *Store) ClearCart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items.Next(nil)
	if err := s.storage.Remove(storage.KeyCart); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}

func (s *Store) Items() []Item { return s.snapshot() }

// Total sums price times quantity over the cart.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.items.Value() {
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (s *Store) ItemCount() int {
	n := 0
	for _, it := range s.items.Value() {
		n += it.Quantity
	}
	return n
}

// Subscribe calls fn with the current cart and again after every change.
func (s *Store) Subscribe(fn func([]Item)) (unsubscribe func()) {
	return s.items.Subscribe(func(items []Item) { fn(slices.Clone(items)) })
}

func (s *Store) snapshot() []Item { return slices.Clone(s.items.Value()) }

// commit publishes items and then persists them. The in-memory state wins
// even if the write fails.
func (s *Store) commit(items []Item) error {
	s.items.Next(items)
	if err := s.storage.Write(storage.KeyCart, items); err != nil {
		s.log.Warn("persist cart failed", zap.Error(err))
		return errors.Wrap(err, "persist cart")
	}
	return nil
}

func indexOf(items []Item, productID int64) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.Product.ID == productID })
}
