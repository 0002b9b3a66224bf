// Package store owns the durable JSON documents: the comment snapshot, the
// operator settings, and the OAuth token. Each store reads and writes one
// whole document; saves go through a temp-file rename so readers never see a
// partially written file.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/tubesweep/tubesweep/internal/models"
)

// CommentStore persists the comment snapshot document.
type CommentStore struct {
	path string
}

func NewCommentStore(path string) *CommentStore {
	return &CommentStore{path: path}
}

// Load reads the snapshot document. A missing or unreadable document yields
// an empty snapshot rather than an error.
func (s *CommentStore) Load() (models.Snapshot, error) {
	snapshot := models.NewSnapshot()
	if err := readDocument(s.path, &snapshot); err != nil {
		return models.NewSnapshot(), nil
	}
	if snapshot.Comments == nil {
		snapshot.Comments = []models.Comment{}
	}
	if snapshot.Stats == nil {
		snapshot.Stats = models.SpamStats{}
	}
	return snapshot, nil
}

// Save overwrites the snapshot document.
func (s *CommentStore) Save(snapshot models.Snapshot) error {
	return writeDocument(s.path, snapshot)
}

// SettingsStore persists the operator settings document.
type SettingsStore struct {
	path string
}

func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Load reads the settings document. Absent or malformed settings come back
// zero-valued; callers decide whether that short-circuits their work.
func (s *SettingsStore) Load() (models.Settings, error) {
	var settings models.Settings
	if err := readDocument(s.path, &settings); err != nil {
		return models.Settings{}, nil
	}
	return settings, nil
}

// Save overwrites the settings document.
func (s *SettingsStore) Save(settings models.Settings) error {
	return writeDocument(s.path, settings)
}

// TokenStore persists the OAuth credential returned by the identity
// provider, including its expiry.
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load returns the stored token, or nil when no usable token has been saved
// yet. A missing or malformed token document means authorization is needed
// again, not a fatal error.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	var token oauth2.Token
	if err := readDocument(s.path, &token); err != nil {
		return nil, nil
	}
	return &token, nil
}

// Save overwrites the stored token.
func (s *TokenStore) Save(token *oauth2.Token) error {
	return writeDocument(s.path, token)
}

func readDocument(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read document, treating as empty", "path", path, "error", err)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("Malformed document, treating as empty", "path", path, "error", err)
		return err
	}
	return nil
}

// writeDocument marshals v and replaces the document atomically.
func writeDocument(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
