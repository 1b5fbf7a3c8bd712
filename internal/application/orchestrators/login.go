package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"carevia/internal/adapters/identity"
	"carevia/internal/domain/session"
)

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Verifier identity.Verifier
	Now      func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotAdmin           = errors.New("this account is not an administrator")
	ErrLoginUnavailable   = errors.New("sign-in is temporarily unavailable, please try again")
)

// ExecuteLogin verifies admin credentials and returns an authenticated session context.
// PRE: Username and Password are provided
// POST: On success the returned context is authenticated at deps.Now()
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (session.Context, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return session.Context{}, ErrInvalidCredentials
	}

	principal, err := deps.Verifier.Verify(ctx, username, input.Password)
	switch {
	case err == nil:
	case errors.Is(err, identity.ErrNotAdmin):
		slog.Info("auth_event", "event", "login_blocked", "username", username, "reason", "not_admin")
		return session.Context{}, ErrNotAdmin
	case errors.Is(err, identity.ErrInvalidCredentials):
		slog.Info("auth_event", "event", "login_failed", "username", username, "reason", "invalid_credentials")
		return session.Context{}, ErrInvalidCredentials
	default:
		slog.Error("auth_event", "event", "login_error", "username", username, "error", err)
		return session.Context{}, fmt.Errorf("%w: %v", ErrLoginUnavailable, err)
	}

	var sc session.Context
	sc.Login(principal.Username, deps.Now())
	slog.Info("auth_event", "event", "login_success", "username", principal.Username)
	return sc, nil
}
