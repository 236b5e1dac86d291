package session_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-hmrc-client/session"
)

func TestTerminalPrompt(t *testing.T) {
	ctx := context.Background()
	const authURL = "https://test-api.service.hmrc.gov.uk/oauth/authorize?client_id=abc"

	t.Run("reads the entered code", func(t *testing.T) {
		var out bytes.Buffer
		prompt := session.TerminalPrompt(strings.NewReader("  my-code \n"), &out)

		code, err := prompt(ctx, authURL)
		require.NoError(t, err)
		require.Equal(t, "my-code", code)
		require.Contains(t, out.String(), authURL)
	})

	t.Run("empty input is an error", func(t *testing.T) {
		var out bytes.Buffer
		prompt := session.TerminalPrompt(strings.NewReader("\n"), &out)

		_, err := prompt(ctx, authURL)
		require.Error(t, err)
	})

	t.Run("closed input is an error", func(t *testing.T) {
		var out bytes.Buffer
		prompt := session.TerminalPrompt(strings.NewReader(""), &out)

		_, err := prompt(ctx, authURL)
		require.Error(t, err)
	})
}

func TestStaticCodePrompt(t *testing.T) {
	code, err := session.StaticCodePrompt("fixed")(context.Background(), "ignored")
	require.NoError(t, err)
	require.Equal(t, "fixed", code)
}
