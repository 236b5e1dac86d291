// Package fraudcheck is the client for the HMRC Test Fraud Prevention
// Headers API, which reports whether the Gov-Client-* headers a session
// sends would satisfy the production validation rules.
package fraudcheck

import (
	"context"

	"github.com/jrsteele09/go-hmrc-client/api"
	"github.com/jrsteele09/go-hmrc-client/session"
)

// HeaderIssue is one problem found with the submitted headers.
type HeaderIssue struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Headers []string `json:"headers"`
}

// Report is the validation feedback for one request's headers.
type Report struct {
	SpecVersion string        `json:"specVersion"`
	Code        string        `json:"code"`
	Message     string        `json:"message"`
	Warnings    []HeaderIssue `json:"warnings,omitempty"`
	Errors      []HeaderIssue `json:"errors,omitempty"`
}

// Client calls the fraud prevention header validation endpoint.
type Client struct {
	api *api.Client
}

// NewClient binds a fraud check client to a session.
func NewClient(sess api.Session, opts ...api.ClientOption) *Client {
	return &Client{api: api.New(sess, opts...)}
}

// Validate submits the session's fraud-prevention headers for feedback.
func (c *Client) Validate(ctx context.Context, opts ...session.RequestOption) (*Report, error) {
	var out Report
	if err := c.api.Get(ctx, "/test/fraud-prevention-headers/validate", nil, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}
