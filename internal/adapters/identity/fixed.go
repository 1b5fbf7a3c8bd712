package identity

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// FixedVerifier accepts a single configured admin account.
type FixedVerifier struct {
	username     string
	passwordHash []byte
}

// NewFixedVerifier creates a verifier for one username and bcrypt hash.
// PRE: passwordHash is a bcrypt hash
func NewFixedVerifier(username, passwordHash string) (*FixedVerifier, error) {
	if username == "" {
		return nil, errors.New("admin username is required")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	return &FixedVerifier{username: username, passwordHash: []byte(passwordHash)}, nil
}

// Verify compares the credentials with the configured account.
// POST: Returns ErrInvalidCredentials on any mismatch
func (v *FixedVerifier) Verify(_ context.Context, username, password string) (Principal, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return Principal{}, ErrInvalidCredentials
	}
	return Principal{Username: v.username, Subject: v.username}, nil
}

// HashPassword returns a bcrypt hash suitable for NewFixedVerifier.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
