package vat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-hmrc-client/api"
	"github.com/jrsteele09/go-hmrc-client/internal/hmrctest"
	"github.com/jrsteele09/go-hmrc-client/internal/utils"
	"github.com/jrsteele09/go-hmrc-client/session"
	"github.com/jrsteele09/go-hmrc-client/vat"
)

const testVRN = "195036945"

func newTestClient(t *testing.T) (*vat.Client, *hmrctest.Server) {
	t.Helper()
	srv := hmrctest.New(t)
	sess, err := session.New(hmrctest.ClientID, hmrctest.ClientSecret,
		session.WithBaseURL(srv.URL),
		session.WithRetryPolicy(session.NoRetry()),
		session.WithToken(srv.IssueToken()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })
	return vat.NewClient(sess, testVRN), srv
}

func testSubmission(periodKey string) vat.Submission {
	return vat.Submission{
		Return: vat.Return{
			PeriodKey:                    periodKey,
			VatDueSales:                  utils.Ptr(api.AmountFromPence(10550)),
			VatDueAcquisitions:           utils.Ptr(api.AmountFromPence(-10045)),
			TotalVatDue:                  utils.Ptr(api.AmountFromPence(505)),
			VatReclaimedCurrPeriod:       utils.Ptr(api.AmountFromPence(10515)),
			NetVatDue:                    utils.Ptr(api.AmountFromPence(10010)),
			TotalValueSalesExVAT:         utils.Ptr(int64(300)),
			TotalValuePurchasesExVAT:     utils.Ptr(int64(300)),
			TotalValueGoodsSuppliedExVAT: utils.Ptr(int64(3000)),
			TotalAcquisitionsExVAT:       utils.Ptr(int64(3000)),
		},
		Finalised: true,
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("submits the exact wire body", func(t *testing.T) {
		client, srv := newTestClient(t)

		confirmation, err := client.Submit(ctx, testSubmission("A001"))
		require.NoError(t, err)
		require.NotZero(t, confirmation.ProcessingDate)
		require.NotEmpty(t, confirmation.FormBundleNumber)

		recorded := srv.LastRequest()
		require.Equal(t, "POST", recorded.Method)
		require.Equal(t, "/organisations/vat/195036945/returns", recorded.Path)
		require.JSONEq(t, `{
			"periodKey": "A001",
			"vatDueSales": 105.50,
			"vatDueAcquisitions": -100.45,
			"totalVatDue": 5.05,
			"vatReclaimedCurrPeriod": 105.15,
			"netVatDue": 100.10,
			"totalValueSalesExVAT": 300,
			"totalValuePurchasesExVAT": 300,
			"totalValueGoodsSuppliedExVAT": 3000,
			"totalAcquisitionsExVAT": 3000,
			"finalised": true
		}`, string(recorded.Body))
	})

	t.Run("round trips through retrieve", func(t *testing.T) {
		client, _ := newTestClient(t)
		sub := testSubmission("18A2")

		_, err := client.Submit(ctx, sub)
		require.NoError(t, err)

		retrieved, err := client.Retrieve(ctx, "18A2")
		require.NoError(t, err)
		require.Equal(t, sub.Return, *retrieved)
	})

	t.Run("missing box fails before any network call", func(t *testing.T) {
		client, srv := newTestClient(t)
		sub := testSubmission("A001")
		sub.TotalVatDue = nil

		_, err := client.Submit(ctx, sub)
		var validationErr *api.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Empty(t, srv.Requests())
	})

	t.Run("zero boxes are valid", func(t *testing.T) {
		client, _ := newTestClient(t)
		sub := testSubmission("A002")
		sub.TotalVatDue = utils.Ptr(api.Amount(0))
		sub.TotalValueSalesExVAT = utils.Ptr(int64(0))

		_, err := client.Submit(ctx, sub)
		require.NoError(t, err)
	})

	t.Run("unfinalised return is rejected", func(t *testing.T) {
		client, srv := newTestClient(t)
		sub := testSubmission("A001")
		sub.Finalised = false

		_, err := client.Submit(ctx, sub)
		var validationErr *api.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Empty(t, srv.Requests())
	})

	t.Run("duplicate submission is a business error", func(t *testing.T) {
		client, _ := newTestClient(t)
		sub := testSubmission("A001")

		_, err := client.Submit(ctx, sub)
		require.NoError(t, err)

		_, err = client.Submit(ctx, sub)
		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, 403, apiErr.StatusCode)
		require.Equal(t, "BUSINESS_ERROR", apiErr.Code())
		require.Len(t, apiErr.Response.Errors, 1)
		require.Equal(t, "DUPLICATE_SUBMISSION", apiErr.Response.Errors[0].Code)
	})
}

func TestRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown period key", func(t *testing.T) {
		client, _ := newTestClient(t)

		_, err := client.Retrieve(ctx, "99ZZ")
		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, 404, apiErr.StatusCode)
		require.Equal(t, "NOT_FOUND", apiErr.Code())
	})

	t.Run("period keys with reserved characters", func(t *testing.T) {
		client, srv := newTestClient(t)
		srv.SeedReturn(testVRN, testSubmission("#001"))

		retrieved, err := client.Retrieve(ctx, "#001")
		require.NoError(t, err)
		require.Equal(t, "#001", retrieved.PeriodKey)
		require.Equal(t, "/organisations/vat/195036945/returns/%23001", srv.LastRequest().Path)
	})
}

func TestObligations(t *testing.T) {
	ctx := context.Background()

	t.Run("all obligations", func(t *testing.T) {
		client, _ := newTestClient(t)

		obligations, err := client.Obligations(ctx, vat.ObligationsQuery{})
		require.NoError(t, err)
		require.Len(t, obligations, 2)
	})

	t.Run("status filter", func(t *testing.T) {
		client, srv := newTestClient(t)

		open, err := client.Obligations(ctx, vat.ObligationsQuery{Status: vat.ObligationOpen})
		require.NoError(t, err)
		require.Len(t, open, 1)
		require.Equal(t, vat.ObligationOpen, open[0].Status)
		require.Nil(t, open[0].Received)
		require.Contains(t, srv.LastRequest().Path, "/organisations/vat/195036945/obligations")

		fulfilled, err := client.Obligations(ctx, vat.ObligationsQuery{Status: vat.ObligationFulfilled})
		require.NoError(t, err)
		require.Len(t, fulfilled, 1)
		require.NotNil(t, fulfilled[0].Received)
	})

	t.Run("date range filter", func(t *testing.T) {
		client, _ := newTestClient(t)
		from := api.NewDate(2018, 1, 1)
		to := api.NewDate(2018, 3, 31)

		obligations, err := client.Obligations(ctx, vat.ObligationsQuery{From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, obligations, 1)
		require.Equal(t, "18A1", obligations[0].PeriodKey)
	})

	t.Run("fulfilled obligations have retrievable returns", func(t *testing.T) {
		client, srv := newTestClient(t)

		fulfilled, err := client.Obligations(ctx, vat.ObligationsQuery{Status: vat.ObligationFulfilled})
		require.NoError(t, err)
		require.NotEmpty(t, fulfilled)

		for _, obligation := range fulfilled {
			srv.SeedReturn(testVRN, testSubmission(obligation.PeriodKey))
			retrieved, err := client.Retrieve(ctx, obligation.PeriodKey)
			require.NoError(t, err)
			require.Equal(t, obligation.PeriodKey, retrieved.PeriodKey)
		}
	})

	t.Run("test scenario selects canned data", func(t *testing.T) {
		client, srv := newTestClient(t)

		obligations, err := client.Obligations(ctx, vat.ObligationsQuery{},
			session.WithScenario("MONTHLY_TWO_MET"))
		require.NoError(t, err)
		require.Len(t, obligations, 3)
		require.Equal(t, "MONTHLY_TWO_MET", srv.LastRequest().Header.Get("Gov-Test-Scenario"))
	})
}

func TestPayments(t *testing.T) {
	ctx := context.Background()
	client, srv := newTestClient(t)
	srv.SeedReturn(testVRN, testSubmission("18A1"))

	payments, err := client.Payments(ctx, api.NewDate(2018, 1, 1), api.NewDate(2018, 12, 31))
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, api.AmountFromPence(10010), payments[0].Amount)
}

func TestLiabilities(t *testing.T) {
	ctx := context.Background()
	client, srv := newTestClient(t)
	srv.SeedReturn(testVRN, testSubmission("18A1"))

	liabilities, err := client.Liabilities(ctx, api.NewDate(2018, 1, 1), api.NewDate(2018, 12, 31))
	require.NoError(t, err)
	require.Len(t, liabilities, 1)
	require.Equal(t, "VAT Return Debit Charge", liabilities[0].Type)
	require.Equal(t, api.AmountFromPence(10010), liabilities[0].OriginalAmount)
	require.NotNil(t, liabilities[0].TaxPeriod)
}

func TestScopeRegistration(t *testing.T) {
	sess, err := session.New("id", "secret")
	require.NoError(t, err)

	client := vat.NewClient(sess, testVRN)
	require.Equal(t, testVRN, client.VRN())
	require.Contains(t, sess.Scopes(), vat.ScopeRead)
	require.Contains(t, sess.Scopes(), vat.ScopeWrite)
}
