// Package auth tracks the signed-in storefront user.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"Storefront/internal/async"
	"Storefront/internal/observable"
	"Storefront/internal/session"
	"Storefront/internal/storage"
	"Storefront/internal/timeid"
)

// DefaultDelay is how long login and registration take to resolve.
const DefaultDelay = 500 * time.Millisecond

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type User struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Address *Address `json:"address,omitempty"`
	Phone   string   `json:"phone,omitempty"`
}

func (u User) clone() User {
	if u.Address != nil {
		a := *u.Address
		u.Address = &a
	}
	return u
}

type Options struct {
	// Authenticator checks login credentials. Defaults to
	// SimulatedAuthenticator.
	Authenticator Authenticator
	// Tokens, when set, mints a session token on every sign-in.
	Tokens *session.TokenMaker
	IDs    *timeid.Generator
	Delay  time.Duration
	Log    *zap.Logger
}

type Store struct {
	mu      sync.Mutex
	storage *storage.Adapter
	authn   Authenticator
	tokens  *session.TokenMaker
	ids     *timeid.Generator
	delay   time.Duration
	log     *zap.Logger

	user  *observable.Subject[*User]
	token string
}

func NewStore(st *storage.Adapter, opts Options) *Store {
	if opts.Authenticator == nil {
		opts.Authenticator = SimulatedAuthenticator{}
	}
	if opts.IDs == nil {
		opts.IDs = timeid.New(nil)
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	s := &Store{
		storage: st,
		authn:   opts.Authenticator,
		tokens:  opts.Tokens,
		ids:     opts.IDs,
		delay:   max(opts.Delay, 0),
		log:     opts.Log,
	}

	var saved *User
	if !st.Read(storage.KeyCurrentUser, &saved) {
		saved = nil
	}
	s.user = observable.NewSubject(saved)

	if saved != nil && s.tokens != nil {
		var tok string
		if st.Read(storage.KeySessionToken, &tok) {
			if _, err := s.tokens.Parse(tok); err == nil {
				s.token = tok
			}
		}
	}
	return s
}

// Login signs in through the configured Authenticator. The current user is
// updated as soon as the credentials are accepted; the returned Future
// resolves after the configured delay.
func (s *Store) Login(ctx context.Context, email, password string) *async.Future[User] {
	u, err := s.authn.Authenticate(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return async.Failed[User](err)
	}
	if err := s.signIn(u); err != nil {
		return async.Failed[User](err)
	}
	return async.After(s.delay, u.clone(), nil)
}

// Register creates a profile with a fresh id and signs it in. Name and email
// are required.
func (s *Store) Register(ctx context.Context, u User, password string) *async.Future[User] {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	if u.Name == "" || u.Email == "" {
		return async.Failed[User](ErrMissingFields)
	}

	u.ID = s.ids.Next()

	if e, ok := s.authn.(Enroller); ok {
		if err := e.Enroll(ctx, u, password); err != nil {
			return async.Failed[User](err)
		}
	}
	if err := s.signIn(u); err != nil {
		return async.Failed[User](err)
	}
	return async.After(s.delay, u.clone(), nil)
}

func (s *Store) signIn(u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := u.clone()
	s.user.Next(&cur)

	if err := s.storage.Write(storage.KeyCurrentUser, cur); err != nil {
		s.log.Warn("persist current user failed", zap.Error(err))
		return errors.Wrap(err, "persist current user")
	}

	s.token = ""
	if s.tokens == nil {
		return nil
	}
	tok, err := s.tokens.New(u.ID, u.Email)
	if err != nil {
		return errors.Wrap(err, "issue session token")
	}
	s.token = tok
	if err := s.storage.Write(storage.KeySessionToken, tok); err != nil {
		return errors.Wrap(err, "persist session token")
	}
	return nil
}

func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user.Next(nil)

	if err := s.storage.Remove(storage.KeyCurrentUser); err != nil {
		return errors.Wrap(err, "clear current user")
	}
	if err := s.storage.Remove(storage.KeySessionToken); err != nil {
		return errors.Wrap(err, "clear session token")
	}
	return nil
}

func (s *Store) CurrentUser() (User, bool) {
	u := s.user.Value()
	if u == nil {
		return User{}, false
	}
	return u.clone(), true
}

func (s *Store) IsAuthenticated() bool { return s.user.Value() != nil }

// Token returns the session token of the signed-in user, if one was issued.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// Subscribe calls fn with the current user (nil when signed out) and again
// on every sign-in and sign-out.
func (s *Store) Subscribe(fn func(*User)) (unsubscribe func()) {
	return s.user.Subscribe(func(u *User) {
		if u == nil {
			fn(nil)
			return
		}
		c := u.clone()
		fn(&c)
	})
}
