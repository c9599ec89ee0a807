package httpapi

import (
	"context"
	"net/http"

	"github.com/goliatone/go-entityform/pkg/account"
)

var _ account.Registrar = (*Client)(nil)

// Register posts a new account to /api/register.
func (c *Client) Register(ctx context.Context, req account.Request) error {
	return c.do(ctx, http.MethodPost, "/api/register", nil, req, nil)
}
