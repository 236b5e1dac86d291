// Package token persists OAuth2 tokens between process runs so that a
// user only has to walk through the interactive authorization journey
// once.
package token

import "golang.org/x/oauth2"

// Storage persists a single OAuth2 token.
//
// A Storage implementation is owned by one session; implementations are
// not required to be safe for concurrent use.
type Storage interface {
	// Load returns the stored token, or nil when nothing is stored.
	Load() (*oauth2.Token, error)

	// Save replaces the stored token.
	Save(tok *oauth2.Token) error

	// Delete removes the stored token. Subsequent Loads return nil.
	Delete() error

	// Close releases the storage medium.
	Close() error
}
