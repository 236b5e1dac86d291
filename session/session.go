// Package session provides an OAuth2-authorised HTTP session for the
// HMRC APIs. A session owns the token lifecycle: it walks the user
// through the authorization-code journey once, persists the resulting
// token, refreshes it transparently when it expires, and attaches the
// bearer token plus the mandatory fraud-prevention headers to every
// outgoing request.
//
// A session's token state is guarded internally, but the intended usage
// remains one session per goroutine (or externally serialized access);
// there is no coordination of concurrent API operations.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-hmrc-client/internal/config"
	"github.com/jrsteele09/go-hmrc-client/token"
)

const (
	// BaseURL is the production HMRC API endpoint.
	BaseURL = "https://api.service.hmrc.gov.uk"

	// SandboxURL is the HMRC sandbox endpoint used for testing.
	SandboxURL = "https://test-api.service.hmrc.gov.uk"

	// OOBRedirectURI is the out-of-band redirect URI for applications
	// without a web callback: HMRC displays the authorization code for
	// the user to copy-paste instead of redirecting to it.
	OOBRedirectURI = "urn:ietf:wg:oauth:2.0:oob"

	authPath  = "/oauth/authorize"
	tokenPath = "/oauth/token"

	// RequestContentType and ResponseContentType are the media types
	// the HMRC APIs expect and produce.
	RequestContentType  = "application/json"
	ResponseContentType = "application/vnd.hmrc.1.0+json"
)

// Version identifies this library in the Gov-Vendor-Version header.
const Version = "1.0.0"

// expiryLeeway refreshes tokens slightly before their stated expiry so
// a token cannot lapse mid-flight.
const expiryLeeway = 30 * time.Second

const defaultTimeout = 30 * time.Second

// Session is an HTTP session authorised against the HMRC APIs.
type Session struct {
	cfg     *oauth2.Config
	client  *http.Client
	baseURL string
	sandbox bool
	storage token.Storage
	prompt  CodePrompt
	retry   RetryPolicy
	gdpr    bool
	log     zerolog.Logger
	now     func() time.Time

	mu     sync.Mutex
	tok    *oauth2.Token
	scopes []string
}

// New creates a session for the given client credentials. Both may be
// empty: the client ID falls back to HMRC_CLIENT_ID, and a session with
// no credentials at all can still call unrestricted endpoints.
func New(clientID, clientSecret string, opts ...Option) (*Session, error) {
	if clientID == "" {
		clientID = config.ClientID()
	}
	if clientSecret == "" {
		clientSecret = config.ClientSecret()
	}

	s := &Session{
		client: &http.Client{Timeout: defaultTimeout},
		prompt: TerminalPrompt(os.Stdin, os.Stderr),
		retry:  DefaultRetryPolicy(),
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.baseURL == "" {
		s.baseURL = BaseURL
		if s.sandbox {
			s.baseURL = SandboxURL
		}
	}
	// Sandbox traffic never touches real taxpayer data, so the fuller
	// fraud-prevention header set can always be sent there.
	if s.sandbox {
		s.gdpr = true
	}

	s.cfg = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  OOBRedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL: s.baseURL + authPath,
			// HMRC requires client credentials in the request body.
			TokenURL:  s.baseURL + tokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	if s.tok == nil && s.storage != nil {
		stored, err := s.storage.Load()
		if err != nil {
			return nil, errors.Wrap(err, "[session New] loading stored token")
		}
		s.tok = stored
	}
	if s.tok == nil {
		if server := config.ServerToken(); server != "" {
			s.tok = &oauth2.Token{AccessToken: server, TokenType: "bearer"}
		}
	}
	if s.tok != nil {
		s.scopes = mergeScopes(s.scopes, scopesOf(s.tok))
	}

	return s, nil
}

// BaseURL returns the service endpoint this session talks to.
func (s *Session) BaseURL() string {
	return s.baseURL
}

// Sandbox reports whether the session targets the HMRC sandbox.
func (s *Session) Sandbox() bool {
	return s.sandbox
}

// Token returns a copy of the session's current token, or nil when the
// session is unauthorised.
func (s *Session) Token() *oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tok == nil {
		return nil
	}
	copied := *s.tok
	return &copied
}

// ExtendScope adds the given OAuth2 scopes to the set requested at
// authorization time. Resource clients call this when they are bound to
// a session. Duplicates are ignored.
func (s *Session) ExtendScope(scopes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes = mergeScopes(s.scopes, scopes)
}

// Scopes returns the scopes the session will request.
func (s *Session) Scopes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.scopes))
	copy(out, s.scopes)
	return out
}

// Authorize obtains an access token. When a refresh token is already
// held (seeded or loaded from storage) the token is refreshed silently;
// otherwise the interactive authorization-code journey runs: the code
// prompt receives the authorization URL and must return the code the
// user obtained from it.
func (s *Session) Authorize(ctx context.Context) error {
	s.mu.Lock()
	tok := s.tok
	s.mu.Unlock()

	if tok != nil && tok.RefreshToken != "" {
		return s.refresh(ctx)
	}
	if tok != nil && tok.Valid() {
		// Server tokens and still-live stored tokens need no journey.
		return nil
	}
	if s.cfg.ClientID == "" {
		return &AuthError{Op: "authorize", Err: ErrNoClientID}
	}

	state, err := randomState()
	if err != nil {
		return errors.Wrap(err, "[Session Authorize] generating state")
	}
	authURL := s.oauthConfig().AuthCodeURL(state)
	s.log.Debug().Str("url", authURL).Msg("starting authorization journey")

	code, err := s.prompt(ctx, authURL)
	if err != nil {
		return &AuthError{Op: "prompt for authorization code", Err: err}
	}
	newTok, err := s.oauthConfig().Exchange(s.oauthContext(ctx), code)
	if err != nil {
		return tokenEndpointError("exchange authorization code", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = newTok
	s.log.Info().Time("expiry", newTok.Expiry).Msg("authorized")
	return s.persistLocked()
}

// oauthContext routes token-endpoint traffic through the session's HTTP
// client; without it the oauth2 package falls back to
// http.DefaultClient.
func (s *Session) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.client)
}

// oauthConfig snapshots the OAuth2 configuration with the currently
// requested scopes.
func (s *Session) oauthConfig() *oauth2.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := *s.cfg
	cfg.Scopes = make([]string, len(s.scopes))
	copy(cfg.Scopes, s.scopes)
	return &cfg
}

// refresh exchanges the held refresh token for a new access token.
func (s *Session) refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.tok == nil || s.tok.RefreshToken == "" {
		return &AuthError{Op: "refresh", Err: ErrNoRefreshToken}
	}
	src := s.cfg.TokenSource(s.oauthContext(ctx), &oauth2.Token{RefreshToken: s.tok.RefreshToken})
	newTok, err := src.Token()
	if err != nil {
		return tokenEndpointError("refresh access token", err)
	}
	s.tok = newTok
	s.log.Debug().Time("expiry", newTok.Expiry).Msg("token refreshed")
	return s.persistLocked()
}

// persistLocked saves the current token to storage. Callers hold s.mu.
func (s *Session) persistLocked() error {
	if s.storage == nil {
		return nil
	}
	if err := s.storage.Save(s.tok); err != nil {
		return errors.Wrap(err, "[Session] saving token")
	}
	return nil
}

// bearerToken returns the access token to attach to a request,
// refreshing first when the held token has expired. An unauthorised
// session yields an empty token: unrestricted endpoints such as
// /hello/world accept anonymous calls.
func (s *Session) bearerToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tok == nil {
		return "", nil
	}
	if s.expiredLocked() && s.tok.RefreshToken != "" {
		if err := s.refreshLocked(ctx); err != nil {
			return "", err
		}
	}
	return s.tok.AccessToken, nil
}

func (s *Session) expiredLocked() bool {
	if s.tok.AccessToken == "" {
		return true
	}
	if s.tok.Expiry.IsZero() {
		return false
	}
	return s.now().Add(expiryLeeway).After(s.tok.Expiry)
}

func (s *Session) hasRefreshToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tok != nil && s.tok.RefreshToken != ""
}

// Close releases the session's token storage, if any.
func (s *Session) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func mergeScopes(current, extra []string) []string {
	for _, scope := range extra {
		if scope == "" || containsScope(current, scope) {
			continue
		}
		current = append(current, scope)
	}
	return current
}

func containsScope(scopes []string, scope string) bool {
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func scopesOf(tok *oauth2.Token) []string {
	scope, _ := tok.Extra("scope").(string)
	return strings.Fields(scope)
}
