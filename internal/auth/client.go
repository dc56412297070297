package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"noteboard/internal/remote"
	"noteboard/internal/session"
)

// Fallback messages shown when the server gives no reason.
const (
	MsgLoginFailed    = "Login failed"
	MsgRegisterFailed = "Registration failed"
)

// ErrEmptyToken is returned when the server accepted the credentials but sent no token.
var ErrEmptyToken = errors.New("auth response carried no token")

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Client calls the remote auth endpoints.
type Client struct {
	api *remote.Client
}

func NewClient(api *remote.Client) *Client {
	return &Client{api: api}
}

// Login exchanges email and password for a session.
func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	return c.exchange(ctx, "/api/auth/login", Credentials{Email: email, Password: password})
}

// Register creates an account and returns its session.
func (c *Client) Register(ctx context.Context, username, email, password string) (session.Session, error) {
	return c.exchange(ctx, "/api/auth/register", Registration{Username: username, Email: email, Password: password})
}

func (c *Client) exchange(ctx context.Context, path string, body any) (session.Session, error) {
	var resp tokenResponse
	if err := c.api.Do(ctx, http.MethodPost, path, nil, "", body, &resp); err != nil {
		return session.Session{}, fmt.Errorf("auth %s: %w", path, err)
	}
	if resp.Token == "" {
		return session.Session{}, ErrEmptyToken
	}
	return session.Session{Token: resp.Token}, nil
}

// UserMessage returns the server-provided reason carried by err, or fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
