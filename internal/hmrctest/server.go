// Package hmrctest runs an in-process fake of the HMRC API surface the
// library talks to. Access tokens are real signed JWTs checked on every
// restricted endpoint, so expiry and refresh behaviour is exercised
// end to end rather than stubbed.
package hmrctest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-hmrc-client/vat"
)

// Default credentials the fake server accepts.
const (
	ClientID     = "test-client-id"
	ClientSecret = "test-client-secret"
)

// RecordedRequest captures one request for assertions.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Server is the fake HMRC API.
type Server struct {
	URL      string
	TokenTTL time.Duration

	t   *testing.T
	srv *httptest.Server
	key []byte

	mu       sync.Mutex
	codes    map[string]bool
	refresh  map[string]bool
	returns  map[string]map[string]vat.Submission
	recorded []RecordedRequest
}

// New starts a fake HMRC server. It is shut down with the test.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		TokenTTL: time.Hour,
		t:        t,
		key:      []byte(uuid.New().String()),
		codes:    map[string]bool{},
		refresh:  map[string]bool{},
		returns:  map[string]map[string]vat.Submission{},
	}

	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/oauth/token", s.handleToken).Methods(http.MethodPost)

	r.HandleFunc("/hello/world", s.handleHello("Hello World")).Methods(http.MethodGet)
	r.HandleFunc("/hello/user", s.restricted(s.handleHello("Hello User"))).Methods(http.MethodGet)
	r.HandleFunc("/hello/application", s.restricted(s.handleHello("Hello Application"))).Methods(http.MethodGet)

	r.HandleFunc("/organisations/vat/{vrn}/obligations", s.restricted(s.handleObligations)).Methods(http.MethodGet)
	r.HandleFunc("/organisations/vat/{vrn}/returns", s.restricted(s.handleSubmit)).Methods(http.MethodPost)
	r.HandleFunc("/organisations/vat/{vrn}/returns/{periodKey}", s.restricted(s.handleRetrieve)).Methods(http.MethodGet)
	r.HandleFunc("/organisations/vat/{vrn}/payments", s.restricted(s.handlePayments)).Methods(http.MethodGet)
	r.HandleFunc("/organisations/vat/{vrn}/liabilities", s.restricted(s.handleLiabilities)).Methods(http.MethodGet)

	r.HandleFunc("/create-test-user/individuals", s.restricted(s.handleCreateUser(false))).Methods(http.MethodPost)
	r.HandleFunc("/create-test-user/organisations", s.restricted(s.handleCreateUser(true))).Methods(http.MethodPost)

	r.HandleFunc("/test/fraud-prevention-headers/validate", s.restricted(s.handleFraudCheck)).Methods(http.MethodGet)

	s.srv = httptest.NewServer(r)
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)
	return s
}

// AuthCode mints a one-time authorization code, as if a user had just
// completed the authorization journey.
func (s *Server) AuthCode() string {
	code := uuid.New().String()
	s.mu.Lock()
	s.codes[code] = true
	s.mu.Unlock()
	return code
}

// IssueToken mints a valid token pair with the server's TokenTTL.
func (s *Server) IssueToken() *oauth2.Token {
	return s.issue(s.TokenTTL)
}

// IssueExpiredToken mints a token whose access half has already
// expired; the refresh token remains valid. Sessions holding it must
// refresh transparently before their next call.
func (s *Server) IssueExpiredToken() *oauth2.Token {
	return s.issue(-time.Minute)
}

// IssueStaleToken mints a token the holder believes is live (future
// expiry timestamp) but whose signed access token the server already
// rejects. Forces the 401 refresh-and-retry path.
func (s *Server) IssueStaleToken() *oauth2.Token {
	tok := s.issue(-time.Minute)
	tok.Expiry = time.Now().Add(time.Hour)
	return tok
}

func (s *Server) issue(ttl time.Duration) *oauth2.Token {
	refresh := uuid.New().String()
	s.mu.Lock()
	s.refresh[refresh] = true
	s.mu.Unlock()
	return &oauth2.Token{
		AccessToken:  s.mintAccessToken(ttl),
		TokenType:    "bearer",
		RefreshToken: refresh,
		Expiry:       time.Now().Add(ttl),
	}
}

// SeedReturn stores a submitted return without going through the API.
func (s *Server) SeedReturn(vrn string, sub vat.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.returns[vrn] == nil {
		s.returns[vrn] = map[string]vat.Submission{}
	}
	s.returns[vrn][sub.PeriodKey] = sub
}

// Requests returns the recorded requests so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.recorded))
	copy(out, s.recorded)
	return out
}

// LastRequest returns the most recent recorded request.
func (s *Server) LastRequest() RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recorded) == 0 {
		s.t.Fatal("no requests recorded")
	}
	return s.recorded[len(s.recorded)-1]
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
		s.mu.Lock()
		s.recorded = append(s.recorded, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) mintAccessToken(ttl time.Duration) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": uuid.New().String(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		s.t.Fatalf("signing access token: %v", err)
	}
	return signed
}

func (s *Server) validAccessToken(raw string) bool {
	parsed, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	return err == nil && parsed.Valid
}

