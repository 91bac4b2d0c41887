// Package tables serves whitelisted database tables over HTTP.
//
// Table names taken from a request are only ever used as lookup keys into a
// fixed set of prepared statements; no request input reaches SQL text.
package tables

import (
	"regexp"
	"strconv"

	"github.com/go-faster/errors"
)

type Table string

const (
	Users      Table = "users"
	Products   Table = "products"
	Orders     Table = "orders"
	Categories Table = "categories"
)

// All is the whitelist, in a stable order.
var All = []Table{Users, Products, Orders, Categories}

var (
	listQueries = map[Table]string{
		Users:      `SELECT * FROM users ORDER BY id`,
		Products:   `SELECT * FROM products ORDER BY id`,
		Orders:     `SELECT * FROM orders ORDER BY id`,
		Categories: `SELECT * FROM categories ORDER BY id`,
	}
	getQueries = map[Table]string{
		Users:      `SELECT * FROM users WHERE id = $1`,
		Products:   `SELECT * FROM products WHERE id = $1`,
		Orders:     `SELECT * FROM orders WHERE id = $1`,
		Categories: `SELECT * FROM categories WHERE id = $1`,
	}
)

const insertUserQuery = `INSERT INTO users (name, email, created_at) VALUES ($1, $2, now()) RETURNING id`

// Parse maps a request path segment to a whitelisted table.
func Parse(name string) (Table, bool) {
	t := Table(name)
	_, ok := listQueries[t]
	return t, ok
}

var idPattern = regexp.MustCompile(`^\d+$`)

var errBadID = errors.New("invalid id")

// ParseID accepts decimal digits only and rejects values that overflow
// int64.
func ParseID(raw string) (int64, error) {
	if !idPattern.MatchString(raw) {
		return 0, errBadID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errBadID
	}
	return id, nil
}

// Row is one record with column names as keys.
type Row = map[string]any

type NewUser struct {
	Name  string
	Email string
}
