package session

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// RequestOption adjusts a single outgoing request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	scenario string
	header   http.Header
}

// WithScenario sets the Gov-Test-Scenario header, selecting one of the
// canned sandbox behaviours (e.g. "MONTHLY_OBS_10_OPEN").
func WithScenario(name string) RequestOption {
	return func(o *requestOptions) {
		o.scenario = name
	}
}

// WithHeader adds an extra header to the request.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.header == nil {
			o.header = http.Header{}
		}
		o.header.Set(key, value)
	}
}

// Request issues an HTTP call against the session's base URL. The path
// may carry a query string. A non-nil body is sent as application/json.
//
// The bearer token is attached when the session holds one, refreshing
// it first if expired. A 401 response triggers exactly one forced
// refresh-and-retry before being surfaced. Transient failures are
// retried per the session's RetryPolicy. The caller owns the returned
// response body.
func (s *Session) Request(ctx context.Context, method, path string, body []byte, opts ...RequestOption) (*http.Response, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	resp, err := s.attempt(ctx, method, path, body, &ro)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && s.hasRefreshToken() {
		drain(resp)
		s.log.Debug().Str("path", path).Msg("access token rejected, refreshing")
		if err := s.refresh(ctx); err != nil {
			return nil, err
		}
		return s.attempt(ctx, method, path, body, &ro)
	}
	return resp, nil
}

// attempt runs the transient-failure retry loop for one logical call.
func (s *Session) attempt(ctx context.Context, method, path string, body []byte, ro *requestOptions) (*http.Response, error) {
	attempts := s.retry.attempts()
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if err := sleep(ctx, s.retry.Backoff); err != nil {
				return nil, &TransportError{Op: method + " " + path, Err: err}
			}
		}

		bearer, err := s.bearerToken(ctx)
		if err != nil {
			return nil, err
		}
		req, err := s.newRequest(ctx, method, path, body, bearer, ro)
		if err != nil {
			return nil, err
		}

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			s.log.Warn().Err(err).Str("path", path).Int("attempt", i+1).Msg("request failed")
			continue
		}
		if s.retry.retryable(resp.StatusCode) && i < attempts-1 {
			s.log.Warn().Int("status", resp.StatusCode).Str("path", path).Int("attempt", i+1).Msg("retrying")
			drain(resp)
			continue
		}
		return resp, nil
	}
	return nil, &TransportError{Op: method + " " + path, Err: lastErr}
}

func (s *Session) newRequest(ctx context.Context, method, path string, body []byte, bearer string, ro *requestOptions) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, rd)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}

	req.Header.Set("Accept", ResponseContentType)
	if body != nil {
		req.Header.Set("Content-Type", RequestContentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for key, value := range s.fraudHeaders() {
		req.Header.Set(key, value)
	}
	if ro.scenario != "" {
		req.Header.Set("Gov-Test-Scenario", ro.scenario)
	}
	for key, values := range ro.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return req, nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16)) //nolint:errcheck
	resp.Body.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
