package session

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-hmrc-client/token"
)

// Option configures a Session at construction time.
type Option func(*Session)

// WithHTTPClient replaces the underlying HTTP client, e.g. to set
// custom timeouts or transports.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) {
		s.client = client
	}
}

// WithSandbox points the session at the HMRC sandbox environment.
func WithSandbox() Option {
	return func(s *Session) {
		s.sandbox = true
	}
}

// WithBaseURL overrides the service endpoint. Mainly for tests.
func WithBaseURL(url string) Option {
	return func(s *Session) {
		s.baseURL = url
	}
}

// WithStorage persists tokens through the given storage. When no seed
// token is supplied the stored token, if any, is loaded at construction.
func WithStorage(storage token.Storage) Option {
	return func(s *Session) {
		s.storage = storage
	}
}

// WithToken seeds the session with an existing token.
func WithToken(tok *oauth2.Token) Option {
	return func(s *Session) {
		s.tok = tok
	}
}

// WithServerToken seeds the session with an application-restricted
// ("server") token, a plain bearer string with no expiry or refresh.
func WithServerToken(serverToken string) Option {
	return func(s *Session) {
		s.tok = &oauth2.Token{AccessToken: serverToken, TokenType: "bearer"}
	}
}

// WithScopes requests additional OAuth2 scopes at authorization time.
func WithScopes(scopes ...string) Option {
	return func(s *Session) {
		s.scopes = mergeScopes(s.scopes, scopes)
	}
}

// WithCodePrompt injects the capability used to turn an authorization
// URL into a user-entered authorization code.
func WithCodePrompt(prompt CodePrompt) Option {
	return func(s *Session) {
		s.prompt = prompt
	}
}

// WithRetryPolicy overrides the transient-failure retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(s *Session) {
		s.retry = policy
	}
}

// WithGDPRConsent enables the real device fingerprint in the
// fraud-prevention headers (local IPs, MAC addresses, OS username).
// Without consent, fixed anonymous values are sent instead.
func WithGDPRConsent() Option {
	return func(s *Session) {
		s.gdpr = true
	}
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithNow sets the clock used for expiry checks and fraud-prevention
// timestamps (primarily for testing).
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}
