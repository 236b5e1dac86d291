package api_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-hmrc-client/api"
)

func TestParseAmount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cases := []struct {
			in    string
			pence int64
		}{
			{"100.30", 10030},
			{"3442.79", 344279},
			{"500", 50000},
			{"0.5", 50},
			{"-0.5", -50},
			{"-12.34", -1234},
			{"+7.00", 700},
			{".25", 25},
			{"0", 0},
		}
		for _, c := range cases {
			t.Run(c.in, func(t *testing.T) {
				amount, err := api.ParseAmount(c.in)
				require.NoError(t, err)
				require.Equal(t, c.pence, amount.Pence())
			})
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{"", "  ", "abc", "12.345", "12.x", "12.-5", "1,000.00", "-", "+", ".", "1.", "-."} {
			t.Run(in, func(t *testing.T) {
				_, err := api.ParseAmount(in)
				require.Error(t, err)
			})
		}
	})
}

func TestAmountString(t *testing.T) {
	require.Equal(t, "100.30", api.AmountFromPence(10030).String())
	require.Equal(t, "0.05", api.AmountFromPence(5).String())
	require.Equal(t, "-3.07", api.AmountFromPence(-307).String())
	require.Equal(t, "500.00", api.AmountFromPence(50000).String())
}

func TestAmountJSON(t *testing.T) {
	t.Run("marshals as a bare number", func(t *testing.T) {
		data, err := json.Marshal(struct {
			Due api.Amount `json:"due"`
		}{Due: api.AmountFromPence(10030)})
		require.NoError(t, err)
		require.Equal(t, `{"due":100.30}`, string(data))
	})

	t.Run("unmarshals numbers and strings", func(t *testing.T) {
		var amount api.Amount
		require.NoError(t, json.Unmarshal([]byte(`105.5`), &amount))
		require.Equal(t, int64(10550), amount.Pence())

		require.NoError(t, json.Unmarshal([]byte(`"3442.79"`), &amount))
		require.Equal(t, int64(344279), amount.Pence())
	})

	t.Run("rejects excess precision", func(t *testing.T) {
		var amount api.Amount
		require.Error(t, json.Unmarshal([]byte(`1.005`), &amount))
	})
}
