package collection

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator resolves credentials to a user. A mismatch yields the zero
// User and a nil error.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (User, error)
}

// PlainAuthenticator matches credentials literally through the user store.
type PlainAuthenticator struct {
	Users *UserStore
}

func (a PlainAuthenticator) Authenticate(ctx context.Context, username, password string) (User, error) {
	return a.Users.ValidateCredentials(ctx, username, password)
}

// BcryptAuthenticator expects the password column to hold bcrypt digests.
type BcryptAuthenticator struct {
	Users *UserStore
}

func (a BcryptAuthenticator) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := a.Users.GetByUsername(ctx, username)
	if err != nil || u.IsZero() {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, nil
	}
	return u, nil
}

// HashPassword returns a bcrypt digest using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
