package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

// TokenType marks persisted session tokens.
const TokenType = "jwt"

// LoadToken reads a persisted session. A missing file yields an empty token.
// Expiry is not checked here: an expired session is detected by the backend.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &oauth2.Token{}, nil
		}
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file: %w", err)
	}
	return &tok, nil
}

// SaveToken writes the session token to path with mode 0600, creating the
// parent directory with mode 0700.
func SaveToken(path, value string, expiry time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tok := &oauth2.Token{
		AccessToken: value,
		TokenType:   TokenType,
		Expiry:      expiry,
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// RemoveToken deletes the token file. A missing file is not an error.
func RemoveToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
