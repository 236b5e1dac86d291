// Package api carries the plumbing shared by all HMRC resource clients:
// JSON request/response handling, the HMRC error envelope, and the wire
// representations of money and dates.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-hmrc-client/session"
)

// Session is the authorised transport a client issues requests through.
// *session.Session satisfies it.
type Session interface {
	Request(ctx context.Context, method, path string, body []byte, opts ...session.RequestOption) (*http.Response, error)
	ExtendScope(scopes ...string)
}

// Client wraps a session with JSON encoding and HMRC error decoding.
// Resource clients (vat, hello, ...) embed one.
type Client struct {
	sess Session
	log  zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger attaches a logger to the client.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client on top of the given session.
func New(sess Session, opts ...ClientOption) *Client {
	c := &Client{sess: sess, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any, opts ...session.RequestOption) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	resp, err := c.sess.Request(ctx, http.MethodGet, path, nil, opts...)
	if err != nil {
		return err
	}
	return c.decode(resp, out)
}

// Post marshals in as the JSON request body, issues a POST request, and
// decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, path string, in, out any, opts ...session.RequestOption) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "[Client Post] encoding request body")
	}
	resp, err := c.sess.Request(ctx, http.MethodPost, path, body, opts...)
	if err != nil {
		return err
	}
	return c.decode(resp, out)
}

func (c *Client) decode(resp *http.Response, out any) error {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &session.TransportError{Op: "read response", Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return c.apiError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "[Client] decoding %d response", resp.StatusCode)
	}
	return nil
}

// apiError maps an HMRC error response onto the error taxonomy. A 401
// here means the session's single refresh-and-retry was already spent.
func (c *Client) apiError(status int, body []byte) error {
	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Code == "" {
		envelope = ErrorResponse{ErrorDetail: ErrorDetail{
			Message: strings.TrimSpace(string(body)),
		}}
	}
	apiErr := &Error{StatusCode: status, Response: envelope}
	c.log.Debug().Int("status", status).Str("code", envelope.Code).Msg("api error")
	if status == http.StatusUnauthorized {
		return &session.AuthError{Op: "request", Err: apiErr}
	}
	return apiErr
}
