package tables

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemStore keeps tables in memory. PingErr and QueryErr let callers simulate
// an unreachable or failing database.
type MemStore struct {
	mu     sync.RWMutex
	rows   map[Table][]Row
	nextID map[Table]int64

	PingErr  error
	QueryErr error
}

func NewMemStore() *MemStore {
	return &MemStore{
		rows:   make(map[Table][]Row),
		nextID: make(map[Table]int64),
	}
}

// Insert appends row to t, assigning the next id when row has none.
func (s *MemStore) Insert(t Table, row Row) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	row = maps.Clone(row)
	id, ok := row["id"].(int64)
	if !ok {
		s.nextID[t]++
		id = s.nextID[t]
		row["id"] = id
	} else if id > s.nextID[t] {
		s.nextID[t] = id
	}
	s.rows[t] = append(s.rows[t], row)
	return id
}

func (s *MemStore) Ping(context.Context) error { return s.PingErr }

func (s *MemStore) List(_ context.Context, t Table) ([]Row, error) {
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Row, 0, len(s.rows[t]))
	for _, r := range s.rows[t] {
		out = append(out, maps.Clone(r))
	}
	return out, nil
}

func (s *MemStore) Get(_ context.Context, t Table, id int64) (Row, bool, error) {
	if s.QueryErr != nil {
		return nil, false, s.QueryErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rows[t] {
		if r["id"] == id {
			return maps.Clone(r), true, nil
		}
	}
	return nil, false, nil
}

func (s *MemStore) CreateUser(_ context.Context, u NewUser) (int64, error) {
	if s.QueryErr != nil {
		return 0, s.QueryErr
	}
	return s.Insert(Users, Row{
		"name":       u.Name,
		"email":      u.Email,
		"created_at": time.Now().UTC(),
	}), nil
}
