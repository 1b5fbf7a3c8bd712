// Package identity checks admin credentials against a fixed account or an
// external identity service.
package identity

import (
	"context"
	"errors"
)

// Identity errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotAdmin           = errors.New("account does not have the admin role")
	ErrUnavailable        = errors.New("identity service unavailable")
)

// Principal is a verified admin identity.
type Principal struct {
	Username string
	Subject  string
}

// Verifier checks a username and password.
type Verifier interface {
	// Verify returns the principal on success, ErrInvalidCredentials or
	// ErrNotAdmin on rejection, or an error wrapping ErrUnavailable.
	Verify(ctx context.Context, username, password string) (Principal, error)
}
