// Package hello is the client for the HMRC Hello World API, the
// conventional smoke test for credentials and connectivity.
package hello

import (
	"context"

	"github.com/jrsteele09/go-hmrc-client/api"
	"github.com/jrsteele09/go-hmrc-client/session"
)

// Scope required by the user-restricted hello endpoint.
const Scope = "hello"

// Message is the Hello World response body.
type Message struct {
	Message string `json:"message"`
}

// Client calls the Hello World endpoints.
type Client struct {
	api *api.Client
}

// NewClient binds a Hello World client to a session.
func NewClient(sess api.Session, opts ...api.ClientOption) *Client {
	sess.ExtendScope(Scope)
	return &Client{api: api.New(sess, opts...)}
}

// World calls the open endpoint; no authorization required.
func (c *Client) World(ctx context.Context, opts ...session.RequestOption) (*Message, error) {
	return c.get(ctx, "/hello/world", opts...)
}

// User calls the user-restricted endpoint; requires a user token.
func (c *Client) User(ctx context.Context, opts ...session.RequestOption) (*Message, error) {
	return c.get(ctx, "/hello/user", opts...)
}

// Application calls the application-restricted endpoint; requires a
// server token.
func (c *Client) Application(ctx context.Context, opts ...session.RequestOption) (*Message, error) {
	return c.get(ctx, "/hello/application", opts...)
}

func (c *Client) get(ctx context.Context, path string, opts ...session.RequestOption) (*Message, error) {
	var out Message
	if err := c.api.Get(ctx, path, nil, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}
