package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"

	"Storefront/internal/storage"
)

const minPasswordLen = 8

type credential struct {
	User User   `json:"user"`
	Hash []byte `json:"hash"`
}

// CredentialAuthenticator verifies bcrypt-hashed passwords enrolled at
// registration. Records are kept under the "credentials" storage key.
type CredentialAuthenticator struct {
	mu      sync.RWMutex
	storage *storage.Adapter
	byEmail map[string]credential
	cost    int
}

func NewCredentialAuthenticator(st *storage.Adapter) *CredentialAuthenticator {
	a := &CredentialAuthenticator{
		storage: st,
		byEmail: make(map[string]credential),
		cost:    bcrypt.DefaultCost,
	}
	st.Read(storage.KeyCredentials, &a.byEmail)
	if a.byEmail == nil {
		a.byEmail = make(map[string]credential)
	}
	return a
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *CredentialAuthenticator) Enroll(_ context.Context, u User, password string) error {
	email := normalizeEmail(u.Email)
	if len(strings.TrimSpace(password)) < minPasswordLen {
		return ErrPasswordTooShort
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.byEmail[email]; ok {
		return ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	a.byEmail[email] = credential{User: u.clone(), Hash: hash}
	if err := a.storage.Write(storage.KeyCredentials, a.byEmail); err != nil {
		delete(a.byEmail, email)
		return errors.Wrap(err, "persist credentials")
	}
	return nil
}

func (a *CredentialAuthenticator) Authenticate(_ context.Context, email, password string) (User, error) {
	a.mu.RLock()
	c, ok := a.byEmail[normalizeEmail(email)]
	a.mu.RUnlock()

	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(c.Hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return c.User.clone(), nil
}
