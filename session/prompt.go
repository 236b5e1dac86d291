package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// CodePrompt turns an authorization URL into the authorization code the
// user obtained by visiting it. Implementations decide how the human is
// involved: a terminal prompt, a GUI dialog, opening a browser.
type CodePrompt func(ctx context.Context, authURL string) (string, error)

// TerminalPrompt returns a CodePrompt that writes instructions to w and
// reads the code from r, one line.
func TerminalPrompt(r io.Reader, w io.Writer) CodePrompt {
	reader := bufio.NewReader(r)
	return func(ctx context.Context, authURL string) (string, error) {
		fmt.Fprintf(w, "Visit the following URL to grant access:\n\n  %s\n\nEnter the code shown after authorization: ", authURL)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", errors.Wrap(err, "[TerminalPrompt] reading authorization code")
		}
		code := strings.TrimSpace(line)
		if code == "" {
			return "", errors.New("[TerminalPrompt] empty authorization code")
		}
		return code, nil
	}
}

// StaticCodePrompt returns a CodePrompt that always yields code.
// Useful in tests and for pre-obtained codes.
func StaticCodePrompt(code string) CodePrompt {
	return func(context.Context, string) (string, error) {
		return code, nil
	}
}
