package backend

import (
	"context"
	"net/http"

	"github.com/carenet/portal/internal/core/ports"
)

func (c *Client) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	var out authResponse
	err := c.do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   creds,
		out:    &out,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	return out.result(), nil
}

func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	var out authResponse
	err := c.do(ctx, call{
		op:     "register",
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   in,
		out:    &out,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	return out.result(), nil
}
