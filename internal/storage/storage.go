// Package storage persists named JSON blobs, the way a browser keeps
// "cart" or "currentUser" in local storage.
package storage

import (
	"encoding/json"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Well-known keys.
const (
	KeyCart              = "cart"
	KeyCurrentUser       = "currentUser"
	KeyOrders            = "orders"
	KeyPreferredLanguage = "preferredLanguage"
	KeyCredentials       = "credentials"
	KeySessionToken      = "sessionToken"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Backend is a raw key-value store.
type Backend interface {
	GetItem(key string) ([]byte, bool, error)
	SetItem(key string, value []byte) error
	RemoveItem(key string) error
}

// Adapter reads and writes JSON values on top of a Backend.
//
// Read never fails: a missing key, a backend error or a blob that no longer
// decodes are all reported as absent, so a corrupt record can't keep a store
// from starting.
type Adapter struct {
	backend Backend
	log     *zap.Logger
}

func NewAdapter(b Backend, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{backend: b, log: log}
}

func (a *Adapter) Read(key string, v any) bool {
	raw, ok, err := a.backend.GetItem(key)
	if err != nil {
		a.log.Warn("storage read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok || len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		a.log.Warn("discarding corrupt record", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (a *Adapter) Write(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %q", key)
	}
	if err := a.backend.SetItem(key, raw); err != nil {
		return errors.Wrapf(err, "write %q", key)
	}
	return nil
}

func (a *Adapter) Remove(key string) error {
	if err := a.backend.RemoveItem(key); err != nil {
		return errors.Wrapf(err, "remove %q", key)
	}
	return nil
}

func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.ContainsAny(key, `/\`)
}
