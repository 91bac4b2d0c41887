// Package order records placed orders and persists them under the "orders"
// key.
package order

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"Storefront/internal/async"
	"Storefront/internal/catalog"
	"Storefront/internal/storage"
	"Storefront/internal/timeid"
)

// DefaultDelay is how long order creation takes to resolve.
const DefaultDelay = 500 * time.Millisecond

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var ErrInvalidStatus = errors.New("invalid order status")

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type ShippingAddress struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
	Phone    string `json:"phone,omitempty"`
}

type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type Order struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"userId"`
	Items           []Item           `json:"items"`
	Total           decimal.Decimal  `json:"total"`
	Status          Status           `json:"status"`
	CreatedAt       time.Time        `json:"createdAt"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
}

// NewOrder is what the caller supplies; the store assigns id and timestamp.
type NewOrder struct {
	UserID          int64
	Items           []Item
	Total           decimal.Decimal
	Status          Status
	ShippingAddress *ShippingAddress
}

type Options struct {
	IDs   *timeid.Generator
	Delay time.Duration
	Log   *zap.Logger
}

type Store struct {
	mu      sync.Mutex
	storage *storage.Adapter
	ids     *timeid.Generator
	delay   time.Duration
	log     *zap.Logger
	orders  []Order
}

func NewStore(st *storage.Adapter, opts Options) *Store {
	if opts.IDs == nil {
		opts.IDs = timeid.New(nil)
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	s := &Store{
		storage: st,
		ids:     opts.IDs,
		delay:   max(opts.Delay, 0),
		log:     opts.Log,
	}
	s.orders = s.load()
	return s
}

func (s *Store) load() []Order {
	var saved []Order
	st := s.storage
	if !st.Read(storage.KeyOrders, &saved) {
		return nil
	}
	return saved
}

// CreateOrder stamps an id and creation time, appends the order and
// persists the full list. Nothing is kept when the write fails. The Future
// resolves with the stored order after the configured delay.
func (s *Store) CreateOrder(_ context.Context, in NewOrder) *async.Future[Order] {
	if in.Status == "" {
		in.Status = StatusPending
	}
	if !in.Status.Valid() {
		return async.Failed[Order](ErrInvalidStatus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o := Order{
		ID:              s.ids.Next(),
		UserID:          in.UserID,
		Items:           slices.Clone(in.Items),
		Total:           in.Total,
		Status:          in.Status,
		CreatedAt:       s.ids.Now().UTC(),
		ShippingAddress: in.ShippingAddress,
	}

	next := append(slices.Clone(s.orders), o)
	if err := s.persist(next); err != nil {
		return async.Failed[Order](err)
	}
	s.orders = next
	return async.After(s.delay, o, nil)
}

// OrdersByUserID rereads storage and returns the user's orders in creation
// order.
func (s *Store) OrdersByUserID(userID int64) []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = s.load()

	out := make([]Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

func (s *Store) OrderByID(orderID int64) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(orderID)
	if i < 0 {
		return Order{}, false
	}
	return s.orders[i], true
}

// UpdateOrderStatus changes the status of an existing order. An unknown id
// reports false without error.
func (s *Store) UpdateOrderStatus(orderID int64, status Status) (Order, bool, error) {
	if !status.Valid() {
		return Order{}, false, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(orderID)
	if i < 0 {
		return Order{}, false, nil
	}
	s.orders[i].Status = status
	if err := s.persist(s.orders); err != nil {
		return s.orders[i], true, err
	}
	return s.orders[i], true, nil
}

func (s *Store) index(orderID int64) int {
	return slices.IndexFunc(s.orders, func(o Order) bool { return o.ID == orderID })
}

func (s *Store) persist(orders []Order) error {
	if err := s.storage.Write(storage.KeyOrders, orders); err != nil {
		s.log.Warn("persist orders failed", zap.Error(err))
		return errors.Wrap(err, "persist orders")
	}
	return nil
}
