package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/daylight-community/daylight-go/internal/models"
)

// FileStore persists tokens as a JSON file readable only by the current user,
// so a signed-in CLI session survives process restarts.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to the provided path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("token file path must be provided")
	}
	return &FileStore{path: path}, nil
}

type tokenFile struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Load reads the persisted pair. A missing file is not an error; it simply
// yields an empty, signed-out pair.
func (f *FileStore) Load() (models.SessionTokens, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.SessionTokens{}, nil
		}
		return models.SessionTokens{}, fmt.Errorf("read token file: %w", err)
	}

	var file tokenFile
	if err := json.Unmarshal(data, &file); err != nil {
		return models.SessionTokens{}, fmt.Errorf("parse token file: %w", err)
	}
	return models.SessionTokens{AccessToken: file.AccessToken, RefreshToken: file.RefreshToken}, nil
}

// Save writes the pair with owner-only permissions.
func (f *FileStore) Save(tokens models.SessionTokens) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	data, err := json.Marshal(tokenFile{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Clear removes the persisted file if present.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
