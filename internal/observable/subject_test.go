package observable

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject_ReplaysCurrentValue(t *testing.T) {
	s := NewSubject(1)
	s.Next(2)

	var got []int
	unsub := s.Subscribe(func(v int) { got = append(got, v) })
	defer unsub()

	assert.Equal(t, []int{2}, got)
}

func TestSubject_EmissionOrder(t *testing.T) {
	s := NewSubject(0)

	var got []int
	unsub := s.Subscribe(func(v int) { got = append(got, v) })

	s.Next(1)
	s.Update(func(v int) int { return v + 10 })
	s.Next(3)

	assert.Equal(t, []int{0, 1, 11, 3}, got)
	assert.Equal(t, 3, s.Value())

	unsub()
	s.Next(4)
	assert.Equal(t, []int{0, 1, 11, 3}, got)
	assert.Equal(t, 0, s.Subscribers())

	// second call is a no-op
	unsub()
}

func TestSubject_SubscriberMayReadValue(t *testing.T) {
	s := NewSubject("a")
	var seen []string
	unsub := s.Subscribe(func(string) { seen = append(seen, s.Value()) })
	defer unsub()

	s.Next("b")
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestSubject_ConcurrentUpdates(t *testing.T) {
	s := NewSubject(0)

	var (
		mu   sync.Mutex
		last int
		seq  []int
	)
	unsub := s.Subscribe(func(v int) {
		mu.Lock()
		defer mu.Unlock()
		seq = append(seq, v)
		last = v
	})
	defer unsub()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seq, 51)
	for i, v := range seq {
		assert.Equal(t, i, v, "values must be delivered in the order they were produced")
	}
	assert.Equal(t, 50, last)
}

func TestSubject_UnsubscribeFromCallback(t *testing.T) {
	s := NewSubject(0)

	var (
		got   []int
		unsub func()
	)
	unsub = s.Subscribe(func(v int) {
		got = append(got, v)
		if v == 1 {
			unsub()
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Next(1)
		s.Next(2)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emission blocked after unsubscribing from a callback")
	}

	assert.Equal(t, []int{0, 1}, got)
	assert.Equal(t, 0, s.Subscribers())
}

func TestSubject_UnsubscribeOtherDuringEmission(t *testing.T) {
	s := NewSubject(0)

	var second []int
	var unsubSecond func()
	unsubFirst := s.Subscribe(func(v int) {
		if v == 1 && unsubSecond != nil {
			unsubSecond()
		}
	})
	defer unsubFirst()
	unsubSecond = s.Subscribe(func(v int) { second = append(second, v) })

	s.Next(1)
	s.Next(2)

	assert.Equal(t, []int{0}, second)
	assert.Equal(t, 1, s.Subscribers())
}
