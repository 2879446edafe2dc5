// Package store persists the email -> token record mapping as a single
// encrypted blob, rewritten in full on every mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"accessgate/internal/token/models"
	"accessgate/pkg/platform/crypto"
)

// Error Contract:
// - Load returns an empty mapping (never an error) when the file is absent or
//   when the ciphertext fails to decrypt or parse; the latter is logged as a
//   warning. Tokens can always be re-issued, never reconstructed, so a corrupt
//   store silently revokes all outstanding tokens. Operators: an unexpected
//   "token store unreadable" warning means every user needs a new token.
// - Save either replaces the file atomically or leaves the previous contents
//   intact; a failed Save never produces a half-written ciphertext.

// FileStore is the encrypted whole-file token store. Callers serialize
// load -> mutate -> save sequences themselves (see the token service); the
// store only guarantees that each individual Load and Save is safe.
type FileStore struct {
	path   string
	sealer *crypto.Sealer
	logger *slog.Logger
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger sets the logger used for corruption warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *FileStore) {
		s.logger = logger
	}
}

// NewFileStore constructs a store backed by the file at path.
func NewFileStore(path string, sealer *crypto.Sealer, opts ...Option) (*FileStore, error) {
	if sealer == nil {
		return nil, fmt.Errorf("sealer is required")
	}
	s := &FileStore{
		path:   path,
		sealer: sealer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load returns the full mapping. An absent file yields an empty mapping; so
// does unreadable ciphertext (fail-safe to empty, not fail-open).
func (s *FileStore) Load(ctx context.Context) (map[string]models.Record, error) {
	encrypted, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]models.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token store: %w", err)
	}

	plaintext, err := s.sealer.Open(encrypted)
	if err != nil {
		s.logger.WarnContext(ctx, "token store unreadable, starting over with an empty store",
			"path", s.path,
			"error", err,
		)
		return map[string]models.Record{}, nil
	}

	var records map[string]models.Record
	if err := json.Unmarshal(plaintext, &records); err != nil {
		s.logger.WarnContext(ctx, "token store decrypted but failed to parse, starting over",
			"path", s.path,
			"error", err,
		)
		return map[string]models.Record{}, nil
	}
	if records == nil {
		records = map[string]models.Record{}
	}
	return records, nil
}

// Save serializes the full mapping, encrypts it, and atomically replaces the
// backing file. Any concurrent Load observes either the old or the new
// contents, never a mix. The rename-based replace only covers writers within
// this process; multi-process deployments need a file-system lock on top.
func (s *FileStore) Save(ctx context.Context, records map[string]models.Record) error {
	plaintext, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("serializing token store: %w", err)
	}

	encrypted, err := s.sealer.Seal(plaintext)
	if err != nil {
		return fmt.Errorf("encrypting token store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(encrypted); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp store file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("restricting temp store file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp store file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing token store: %w", err)
	}
	return nil
}
