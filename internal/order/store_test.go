package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Storefront/internal/catalog"
	"Storefront/internal/storage"
	"Storefront/internal/timeid"
)

func fixedClock(ms int64) *timeid.Generator {
	return timeid.New(func() time.Time { return time.UnixMilli(ms) })
}

func sampleOrder(userID int64) NewOrder {
	p := catalog.Seed()[0]
	return NewOrder{
		UserID: userID,
		Items:  []Item{{Product: p, Quantity: 2, Price: p.Price}},
		Total:  p.Price.Mul(decimal.NewFromInt(2)),
		ShippingAddress: &ShippingAddress{
			FullName: "John Doe",
			Address:  "123 Main St",
			City:     "Montreal",
		},
	}
}

func create(t *testing.T, s *Store, in NewOrder) Order {
	t.Helper()
	o, err := s.CreateOrder(context.Background(), in).Await(context.Background())
	require.NoError(t, err)
	return o
}

func TestCreateOrder(t *testing.T) {
	a := storage.NewAdapter(storage.NewMemoryBackend(), nil)
	s := NewStore(a, Options{IDs: fixedClock(1_700_000_000_000)})

	o1 := create(t, s, sampleOrder(1))
	o2 := create(t, s, sampleOrder(1))

	assert.Equal(t, int64(1_700_000_000_000), o1.ID)
	assert.NotEqual(t, o1.ID, o2.ID, "ids must be unique even within one millisecond")
	assert.Equal(t, StatusPending, o1.Status)
	assert.Equal(t, "599.98", o1.Total.String())
	assert.Equal(t, time.UnixMilli(1_700_000_000_000).UTC(), o1.CreatedAt)

	got, ok := s.OrderByID(o2.ID)
	require.True(t, ok)
	assert.Equal(t, o2.ID, got.ID)
}

func TestCreateOrder_RejectsUnknownStatus(t *testing.T) {
	s := NewStore(storage.NewAdapter(storage.NewMemoryBackend(), nil), Options{})
	in := sampleOrder(1)
	in.Status = "lost"

	_, err := s.CreateOrder(context.Background(), in).Await(context.Background())
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCreateOrder_ResolvesAfterDelay(t *testing.T) {
	s := NewStore(storage.NewAdapter(storage.NewMemoryBackend(), nil), Options{Delay: time.Hour})

	f := s.CreateOrder(context.Background(), sampleOrder(1))
	assert.Len(t, s.OrdersByUserID(1), 1, "order is stored before the future resolves")

	select {
	case <-f.Done():
		t.Fatal("resolved early")
	default:
	}
}

func TestOrdersByUserID(t *testing.T) {
	a := storage.NewAdapter(storage.NewMemoryBackend(), nil)
	s := NewStore(a, Options{})

	first := create(t, s, sampleOrder(1))
	create(t, s, sampleOrder(2))
	third := create(t, s, sampleOrder(1))

	mine := s.OrdersByUserID(1)
	require.Len(t, mine, 2)
	assert.Equal(t, first.ID, mine[0].ID)
	assert.Equal(t, third.ID, mine[1].ID)

	assert.Empty(t, s.OrdersByUserID(99))
}

func TestOrdersByUserID_ReloadsFromStorage(t *testing.T) {
	a := storage.NewAdapter(storage.NewMemoryBackend(), nil)
	writer := NewStore(a, Options{})
	reader := NewStore(a, Options{})

	o := create(t, writer, sampleOrder(5))

	got := reader.OrdersByUserID(5)
	require.Len(t, got, 1)
	assert.Equal(t, o.ID, got[0].ID)
	assert.True(t, o.Total.Equal(got[0].Total))
	require.NotNil(t, got[0].ShippingAddress)
	assert.Equal(t, "Montreal", got[0].ShippingAddress.City)
	assert.Equal(t, "Premium Headphones", got[0].Items[0].Product.Name)
}

func TestUpdateOrderStatus(t *testing.T) {
	a := storage.NewAdapter(storage.NewMemoryBackend(), nil)
	s := NewStore(a, Options{})
	o := create(t, s, sampleOrder(1))

	updated, ok, err := s.UpdateOrderStatus(o.ID, StatusShipped)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusShipped, updated.Status)

	reloaded := NewStore(a, Options{})
	got, ok := reloaded.OrderByID(o.ID)
	require.True(t, ok)
	assert.Equal(t, StatusShipped, got.Status)

	_, ok, err = s.UpdateOrderStatus(12345, StatusDelivered)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.UpdateOrderStatus(o.ID, "returned")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestNewStore_CorruptOrders(t *testing.T) {
	b := storage.NewMemoryBackend()
	require.NoError(t, b.SetItem(storage.KeyOrders, []byte(`[{"id":`)))

	s := NewStore(storage.NewAdapter(b, nil), Options{})
	assert.Empty(t, s.OrdersByUserID(1))

	create(t, s, sampleOrder(1))
	assert.Len(t, s.OrdersByUserID(1), 1)
}

type failingBackend struct {
	*storage.MemoryBackend
	fail bool
}

func (b *failingBackend) SetItem(key string, value []byte) error {
	if b.fail {
		return errors.New("disk full")
	}
	return b.MemoryBackend.SetItem(key, value)
}

func TestCreateOrder_PersistFailureKeepsNothing(t *testing.T) {
	b := &failingBackend{MemoryBackend: storage.NewMemoryBackend(), fail: true}
	s := NewStore(storage.NewAdapter(b, nil), Options{})

	_, err := s.CreateOrder(context.Background(), sampleOrder(1)).Await(context.Background())
	require.Error(t, err)

	b.fail = false
	o := create(t, s, sampleOrder(1))

	got := s.OrdersByUserID(1)
	require.Len(t, got, 1)
	assert.Equal(t, o.ID, got[0].ID)
	_, ok := s.OrderByID(o.ID)
	assert.True(t, ok)
}
