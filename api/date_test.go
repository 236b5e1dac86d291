package api_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-hmrc-client/api"
)

func TestDate(t *testing.T) {
	t.Run("parse and render", func(t *testing.T) {
		d, err := api.ParseDate("2018-04-01")
		require.NoError(t, err)
		require.Equal(t, api.NewDate(2018, time.April, 1), d)
		require.Equal(t, "2018-04-01", d.String())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := api.ParseDate("01/04/2018")
		require.Error(t, err)
	})

	t.Run("json round trip", func(t *testing.T) {
		payload := struct {
			From api.Date `json:"from"`
		}{From: api.NewDate(2018, time.January, 31)}

		data, err := json.Marshal(payload)
		require.NoError(t, err)
		require.JSONEq(t, `{"from":"2018-01-31"}`, string(data))

		var decoded struct {
			From api.Date `json:"from"`
		}
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Equal(t, payload.From, decoded.From)
	})
}
