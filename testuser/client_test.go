package testuser_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-hmrc-client/internal/hmrctest"
	"github.com/jrsteele09/go-hmrc-client/session"
	"github.com/jrsteele09/go-hmrc-client/testuser"
)

func newTestClient(t *testing.T) (*testuser.Client, *hmrctest.Server) {
	t.Helper()
	srv := hmrctest.New(t)
	sess, err := session.New(hmrctest.ClientID, hmrctest.ClientSecret,
		session.WithBaseURL(srv.URL),
		session.WithRetryPolicy(session.NoRetry()),
		session.WithToken(srv.IssueToken()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })
	return testuser.NewClient(sess), srv
}

func TestCreateOrganisation(t *testing.T) {
	client, srv := newTestClient(t)

	user, err := client.CreateOrganisation(context.Background(), []testuser.Service{
		testuser.ServiceMtdVat,
		testuser.ServiceSubmitVatReturns,
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.UserID)
	require.NotEmpty(t, user.Password)
	require.NotNil(t, user.OrganisationDetails)
	require.NotEmpty(t, user.Vrn)
	require.NotNil(t, user.VatRegistrationDate)

	recorded := srv.LastRequest()
	require.Equal(t, "/create-test-user/organisations", recorded.Path)

	var body struct {
		ServiceNames []string `json:"serviceNames"`
	}
	require.NoError(t, json.Unmarshal(recorded.Body, &body))
	require.Equal(t, []string{"mtd-vat", "submit-vat-returns"}, body.ServiceNames)
}

func TestCreateIndividual(t *testing.T) {
	client, srv := newTestClient(t)

	user, err := client.CreateIndividual(context.Background(), []testuser.Service{
		testuser.ServiceSelfAssessment,
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.UserID)
	require.Nil(t, user.OrganisationDetails)
	require.Empty(t, user.Vrn)
	require.Equal(t, "/create-test-user/individuals", srv.LastRequest().Path)
}
