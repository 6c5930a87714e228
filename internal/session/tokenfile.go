package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileCredentials stores the token as a JSON file readable only by the
// owner.
type FileCredentials struct {
	path string
}

type storedToken struct {
	AccessToken string    `json:"access_token"`
	SavedAt     time.Time `json:"saved_at"`
}

// NewFileCredentials uses the given path for token storage.
func NewFileCredentials(path string) FileCredentials {
	return FileCredentials{path: path}
}

// DefaultTokenPath resolves the per-user token location, normally
// ~/.config/space/token.json on Linux.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "space", "token.json"), nil
}

// Load returns the stored token, or empty when none is stored.
func (f FileCredentials) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var stored storedToken
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", fmt.Errorf("parse token file: %w", err)
	}
	return stored.AccessToken, nil
}

// Save writes the token with owner-only permissions.
func (f FileCredentials) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(storedToken{
		AccessToken: token,
		SavedAt:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

// Clear removes the token file. A missing file is not an error.
func (f FileCredentials) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
