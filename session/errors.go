package session

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

var (
	ErrNoClientID     = errors.New("no client ID configured")
	ErrNoRefreshToken = errors.New("no refresh token held")
)

// AuthError reports rejected credentials: a refused authorization code,
// refresh token, or a request still unauthorised after the single
// refresh-and-retry.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (%s): %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TransportError reports a network-level failure (connection refused,
// timeout). The request may not have reached HMRC; callers may retry.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// tokenEndpointError classifies a failed token-endpoint exchange. Only
// a response from the endpoint rejecting the grant is an authentication
// failure; anything else means the request never completed and the
// caller may retry.
func tokenEndpointError(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &AuthError{Op: op, Err: err}
	}
	return &TransportError{Op: op, Err: err}
}
