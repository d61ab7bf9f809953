package backend

import (
	"context"
	"net/http"

	"github.com/campus-marketplace/internal/domain"
)

func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.Credentials, error) {
	return unwrap(call[*domain.Credentials](ctx, c, http.MethodPost, "/auth/login", "", nil, req))
}

// Register creates the account once the email has been verified.
func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	_, err := unwrap(call[any](ctx, c, http.MethodPost, "/auth/register", "", nil, reg))
	return err
}

func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	return unwrap(call[*domain.User](ctx, c, http.MethodGet, "/auth/me", token, nil, nil))
}
