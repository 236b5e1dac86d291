package token

import "golang.org/x/oauth2"

// MemoryStorage keeps the token in process memory. It serves sessions
// that should not touch the filesystem, and doubles as the storage fake
// in tests.
type MemoryStorage struct {
	tok *oauth2.Token
}

// NewMemoryStorage creates an in-memory token store, optionally seeded
// with an existing token.
func NewMemoryStorage(seed *oauth2.Token) *MemoryStorage {
	return &MemoryStorage{tok: seed}
}

func (m *MemoryStorage) Load() (*oauth2.Token, error) {
	return m.tok, nil
}

func (m *MemoryStorage) Save(tok *oauth2.Token) error {
	m.tok = tok
	return nil
}

func (m *MemoryStorage) Delete() error {
	m.tok = nil
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
