package api

import (
	"fmt"
	"strings"
)

// ErrorDetail is one error description in the HMRC error envelope.
type ErrorDetail struct {
	Code                  string `json:"code"`
	Message               string `json:"message"`
	Path                  string `json:"path,omitempty"`
	ReactivationTimestamp int64  `json:"reactivationTimestamp,omitempty"`
}

// ErrorResponse is the HMRC error envelope: a top-level error
// description plus an optional list of contributory descriptions.
type ErrorResponse struct {
	ErrorDetail
	Errors []ErrorDetail `json:"errors,omitempty"`
}

// Error is a structured error returned by HMRC.
type Error struct {
	StatusCode int
	Response   ErrorResponse
}

func (e *Error) Error() string {
	msg := e.Response.Message
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	if len(e.Response.Errors) == 0 {
		return msg
	}
	subs := make([]string, len(e.Response.Errors))
	for i, detail := range e.Response.Errors {
		subs[i] = detail.Message
	}
	return msg + ": " + strings.Join(subs, "/")
}

// Code returns the top-level HMRC error code, e.g. "BUSINESS_ERROR".
func (e *Error) Code() string {
	return e.Response.Code
}

// ValidationError reports a request payload rejected client-side,
// before any network call is made.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("invalid request: %s: %v", e.Reason, e.Err)
	case e.Reason != "":
		return "invalid request: " + e.Reason
	default:
		return fmt.Sprintf("invalid request: %v", e.Err)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
