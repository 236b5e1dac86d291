package api_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-hmrc-client/api"
)

func TestErrorEnvelope(t *testing.T) {
	const body = `{
		"code": "BUSINESS_ERROR",
		"message": "Business validation error",
		"errors": [
			{"code": "DUPLICATE_SUBMISSION", "message": "The VAT return was already submitted for the given period"}
		]
	}`

	var envelope api.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &envelope))
	require.Equal(t, "BUSINESS_ERROR", envelope.Code)
	require.Len(t, envelope.Errors, 1)
	require.Equal(t, "DUPLICATE_SUBMISSION", envelope.Errors[0].Code)
}

func TestErrorMessage(t *testing.T) {
	t.Run("joins contributory errors", func(t *testing.T) {
		err := &api.Error{
			StatusCode: 403,
			Response: api.ErrorResponse{
				ErrorDetail: api.ErrorDetail{Code: "BUSINESS_ERROR", Message: "Business validation error"},
				Errors: []api.ErrorDetail{
					{Code: "DUPLICATE_SUBMISSION", Message: "duplicate submission"},
				},
			},
		}
		require.Equal(t, "Business validation error: duplicate submission", err.Error())
		require.Equal(t, "BUSINESS_ERROR", err.Code())
	})

	t.Run("falls back to the status code", func(t *testing.T) {
		err := &api.Error{StatusCode: 500}
		require.Equal(t, "request failed with status 500", err.Error())
	})
}

func TestValidationErrorMessage(t *testing.T) {
	err := &api.ValidationError{Reason: "return must be finalised before submission"}
	require.Equal(t, "invalid request: return must be finalised before submission", err.Error())
}
