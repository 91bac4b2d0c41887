package storage

import "sync"

type MemoryBackend struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{m: make(map[string][]byte)}
}

func (b *MemoryBackend) GetItem(key string) ([]byte, bool, error) {
	if !validKey(key) {
		return nil, false, ErrInvalidKey
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.m[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (b *MemoryBackend) SetItem(key string, value []byte) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	v := make([]byte, len(value))
	copy(v, value)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = v
	return nil
}

func (b *MemoryBackend) RemoveItem(key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, key)
	return nil
}
