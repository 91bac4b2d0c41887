package tables

import (
	"context"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// Repository reads and writes whitelisted tables.
type Repository interface {
	Ping(ctx context.Context) error
	List(ctx context.Context, t Table) ([]Row, error)
	Get(ctx context.Context, t Table, id int64) (Row, bool, error)
	CreateUser(ctx context.Context, u NewUser) (int64, error)
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
