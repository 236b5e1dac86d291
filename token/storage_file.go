package token

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-hmrc-client/internal/config"
)

// DefaultFileName is the token file used when no explicit path is given
// and HMRC_TOKEN_FILE is unset. It lives in the user's home directory.
const DefaultFileName = ".hmrc.token"

// FileStorage stores the token as JSON in a local file. The file is
// created with owner-only permissions, and saves go through a rename so
// a crash mid-write cannot corrupt an existing token.
type FileStorage struct {
	path string
}

// NewFileStorage opens token storage at path. An empty path falls back
// to HMRC_TOKEN_FILE and then to ~/.hmrc.token.
func NewFileStorage(path string) (*FileStorage, error) {
	if path == "" {
		path = config.TokenFile()
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "[NewFileStorage] resolving home directory")
		}
		path = filepath.Join(home, DefaultFileName)
	}
	return &FileStorage{path: path}, nil
}

// Path returns the location of the token file.
func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStorage Load] reading token file")
	}
	if len(data) == 0 {
		return nil, nil
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, errors.Wrapf(err, "[FileStorage Load] parsing %s", f.path)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, nil
	}
	return &tok, nil
}

func (f *FileStorage) Save(tok *oauth2.Token) error {
	if tok == nil {
		tok = &oauth2.Token{}
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return errors.Wrap(err, "[FileStorage Save] encoding token")
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), DefaultFileName+".*")
	if err != nil {
		return errors.Wrap(err, "[FileStorage Save] creating temporary file")
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileStorage Save] restricting permissions")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileStorage Save] writing token")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[FileStorage Save] closing temporary file")
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrap(err, "[FileStorage Save] replacing token file")
	}
	return nil
}

func (f *FileStorage) Delete() error {
	return f.Save(nil)
}

func (f *FileStorage) Close() error {
	return nil
}
