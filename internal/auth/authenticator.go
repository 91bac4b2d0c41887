package auth

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	ErrMissingFields      = errors.New("name and email are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrPasswordTooShort   = errors.New("password too short")
)

// Authenticator resolves credentials to a user profile.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (User, error)
}

// Enroller is implemented by authenticators that keep their own credential
// records and must learn about newly registered users.
type Enroller interface {
	Enroll(ctx context.Context, u User, password string) error
}

// SimulatedAuthenticator accepts any credentials and answers with a fixed
// demo profile bound to the given email.
type SimulatedAuthenticator struct{}

func (SimulatedAuthenticator) Authenticate(_ context.Context, email, _ string) (User, error) {
	return User{
		ID:    1,
		Name:  "John Doe",
		Email: email,
		Address: &Address{
			Street:  "123 Main St",
			City:    "Montreal",
			State:   "Quebec",
			ZipCode: "H1A 1A1",
			Country: "Canada",
		},
		Phone: "(514) 555-0123",
	}, nil
}
