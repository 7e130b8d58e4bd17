// Package state persists CLI preferences between runs.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Preferences are the values the REPL remembers for the next prompt.
type Preferences struct {
	Language string `json:"language,omitempty"`
	LastSlug string `json:"last_slug,omitempty"`
}

// Load returns zero Preferences when path is missing or empty.
func Load(path string) (Preferences, error) {
	var prefs Preferences
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return prefs, nil
	case err != nil:
		return prefs, fmt.Errorf("read cli state: %w", err)
	case len(data) == 0:
		return prefs, nil
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return prefs, fmt.Errorf("parse cli state %s: %w", path, err)
	}
	return prefs, nil
}

// Save replaces path atomically via a temp file in the same directory.
func Save(path string, prefs Preferences) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cli state dir: %w", err)
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cli state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cli_state-*")
	if err != nil {
		return fmt.Errorf("write cli state: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cli state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write cli state: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write cli state: %w", err)
	}
	return nil
}

// Clear removes the state file; a missing file is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cli state: %w", err)
	}
	return nil
}
