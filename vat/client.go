// Package vat is the client for the HMRC Making Tax Digital VAT API:
// filing obligations, return submission and retrieval, payments and
// liabilities for one VAT-registered organisation.
package vat

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/jrsteele09/go-hmrc-client/api"
	"github.com/jrsteele09/go-hmrc-client/session"
)

// OAuth2 scopes required by the VAT endpoints.
const (
	ScopeRead  = "read:vat"
	ScopeWrite = "write:vat"
)

// Client calls the VAT endpoints for a single VAT registration number.
type Client struct {
	api      *api.Client
	vrn      string
	validate *validator.Validate
}

// NewClient binds a VAT client to a session and a VRN, registering the
// VAT scopes on the session.
func NewClient(sess api.Session, vrn string, opts ...api.ClientOption) *Client {
	sess.ExtendScope(ScopeRead, ScopeWrite)
	return &Client{
		api:      api.New(sess, opts...),
		vrn:      vrn,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// VRN returns the VAT registration number the client is bound to.
func (c *Client) VRN() string {
	return c.vrn
}

// ObligationsQuery narrows an obligation search. A nil bound leaves
// that end of the date range open; an empty status matches all.
type ObligationsQuery struct {
	From   *api.Date
	To     *api.Date
	Status ObligationStatus
}

// Obligations retrieves the VAT filing obligations matching the query.
func (c *Client) Obligations(ctx context.Context, q ObligationsQuery, opts ...session.RequestOption) ([]Obligation, error) {
	query := url.Values{}
	if q.From != nil {
		query.Set("from", q.From.String())
	}
	if q.To != nil {
		query.Set("to", q.To.String())
	}
	if q.Status != "" {
		query.Set("status", string(q.Status))
	}
	var out obligationList
	if err := c.api.Get(ctx, c.path("obligations"), query, &out, opts...); err != nil {
		return nil, err
	}
	return out.Obligations, nil
}

// Submit files a VAT return. The submission is validated client-side
// first: every box must be populated and the return must be finalised,
// otherwise an api.ValidationError is returned before any network call.
func (c *Client) Submit(ctx context.Context, sub Submission, opts ...session.RequestOption) (*Confirmation, error) {
	if err := c.validate.Struct(sub); err != nil {
		return nil, &api.ValidationError{Reason: "incomplete VAT return", Err: err}
	}
	if !sub.Finalised {
		return nil, &api.ValidationError{Reason: "return must be finalised before submission"}
	}
	var out Confirmation
	if err := c.api.Post(ctx, c.path("returns"), sub, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// Retrieve fetches a previously submitted VAT return by period key.
func (c *Client) Retrieve(ctx context.Context, periodKey string, opts ...session.RequestOption) (*Return, error) {
	// Period keys may contain characters such as "#".
	var out Return
	path := c.path("returns") + "/" + url.PathEscape(periodKey)
	if err := c.api.Get(ctx, path, nil, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// Payments retrieves the VAT payments received in the date range.
func (c *Client) Payments(ctx context.Context, from, to api.Date, opts ...session.RequestOption) ([]Payment, error) {
	var out paymentList
	if err := c.api.Get(ctx, c.path("payments"), dateRange(from, to), &out, opts...); err != nil {
		return nil, err
	}
	return out.Payments, nil
}

// Liabilities retrieves the VAT liabilities falling in the date range.
func (c *Client) Liabilities(ctx context.Context, from, to api.Date, opts ...session.RequestOption) ([]Liability, error) {
	var out liabilityList
	if err := c.api.Get(ctx, c.path("liabilities"), dateRange(from, to), &out, opts...); err != nil {
		return nil, err
	}
	return out.Liabilities, nil
}

func (c *Client) path(resource string) string {
	return fmt.Sprintf("/organisations/vat/%s/%s", url.PathEscape(c.vrn), resource)
}

func dateRange(from, to api.Date) url.Values {
	return url.Values{
		"from": []string{from.String()},
		"to":   []string{to.String()},
	}
}
