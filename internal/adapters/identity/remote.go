package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RemoteConfig configures a RemoteVerifier.
type RemoteConfig struct {
	AuthURL   string // base URL of the identity service, e.g. https://x.example.org/auth/v1
	APIKey    string
	JWTSecret string
	AdminRole string // required value of the app_metadata.role claim
}

// RemoteVerifier signs in against an external identity service using the
// password grant and requires the returned token to carry the admin role.
type RemoteVerifier struct {
	cfg    RemoteConfig
	client *http.Client
}

// NewRemoteVerifier creates a RemoteVerifier. A nil client uses a 10s timeout client.
func NewRemoteVerifier(cfg RemoteConfig, client *http.Client) (*RemoteVerifier, error) {
	if cfg.AuthURL == "" || cfg.JWTSecret == "" {
		return nil, errors.New("identity auth URL and JWT secret are required")
	}
	if cfg.AdminRole == "" {
		cfg.AdminRole = "admin"
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	cfg.AuthURL = strings.TrimSuffix(cfg.AuthURL, "/")
	return &RemoteVerifier{cfg: cfg, client: client}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Verify exchanges the credentials for an access token and checks its claims.
// PRE: username is the account email
// POST: Returns a principal only if the token is valid and carries the admin role
func (v *RemoteVerifier) Verify(ctx context.Context, username, password string) (Principal, error) {
	if username == "" || password == "" {
		return Principal{}, ErrInvalidCredentials
	}

	body, err := json.Marshal(map[string]string{"email": username, "password": password})
	if err != nil {
		return Principal{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		v.cfg.AuthURL+"/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.cfg.APIKey != "" {
		req.Header.Set("apikey", v.cfg.APIKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnauthorized:
		slog.Info("auth_event", "event", "remote_login_rejected", "status", resp.StatusCode)
		return Principal{}, ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		return Principal{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&tok); err != nil {
		return Principal{}, fmt.Errorf("%w: decode token response: %v", ErrUnavailable, err)
	}
	return v.verifyToken(tok.AccessToken, username)
}

// verifyToken validates an HS256 access token and its admin role claim.
func (v *RemoteVerifier) verifyToken(tokenString, username string) (Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		slog.Warn("auth_event", "event", "remote_token_invalid", "error", err)
		return Principal{}, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrInvalidCredentials
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Principal{}, ErrInvalidCredentials
	}
	if roleClaim(claims) != v.cfg.AdminRole {
		slog.Info("auth_event", "event", "login_blocked", "subject", sub, "reason", "not_admin")
		return Principal{}, ErrNotAdmin
	}
	return Principal{Username: username, Subject: sub}, nil
}

// roleClaim reads app_metadata.role.
func roleClaim(claims jwt.MapClaims) string {
	meta, ok := claims["app_metadata"].(map[string]interface{})
	if !ok {
		return ""
	}
	role, _ := meta["role"].(string)
	return role
}
