package store

import (
	"bytes"
	"context"
	"crypto/rand"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"accessgate/internal/token/models"
	"accessgate/pkg/platform/crypto"
)

type FileStoreSuite struct {
	suite.Suite
	store *FileStore
	path  string
}

func (s *FileStoreSuite) SetupTest() {
	key := make([]byte, crypto.KeySize)
	_, err := rand.Read(key)
	require.NoError(s.T(), err)

	sealer, err := crypto.New(key)
	require.NoError(s.T(), err)

	s.path = filepath.Join(s.T().TempDir(), "tokens.json")
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.store, err = NewFileStore(s.path, sealer, WithLogger(logger))
	require.NoError(s.T(), err)
}

func TestFileStoreSuite(t *testing.T) {
	suite.Run(t, new(FileStoreSuite))
}

func (s *FileStoreSuite) TestLoadAbsentFileReturnsEmpty() {
	records, err := s.store.Load(context.Background())
	require.NoError(s.T(), err)
	assert.Empty(s.T(), records)
}

func (s *FileStoreSuite) TestSaveLoadRoundTrip() {
	ctx := context.Background()
	records := map[string]models.Record{
		"alice@example.com": {Token: "a1b2c3", Count: 1},
		"bob@example.com":   {Token: "d4e5f6", Count: 0},
	}

	require.NoError(s.T(), s.store.Save(ctx, records))

	loaded, err := s.store.Load(ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), records, loaded)
}

func (s *FileStoreSuite) TestSaveOfLoadedStoreIsIdempotent() {
	ctx := context.Background()
	records := map[string]models.Record{
		"alice@example.com": {Token: "a1b2c3", Count: 2},
	}
	require.NoError(s.T(), s.store.Save(ctx, records))

	loaded, err := s.store.Load(ctx)
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.store.Save(ctx, loaded))

	reloaded, err := s.store.Load(ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), records, reloaded)
}

func (s *FileStoreSuite) TestCiphertextDoesNotLeakPlaintext() {
	ctx := context.Background()
	require.NoError(s.T(), s.store.Save(ctx, map[string]models.Record{
		"alice@example.com": {Token: "supersecret", Count: 0},
	}))

	raw, err := os.ReadFile(s.path)
	require.NoError(s.T(), err)
	assert.NotContains(s.T(), string(raw), "alice@example.com")
	assert.NotContains(s.T(), string(raw), "supersecret")
}

func (s *FileStoreSuite) TestCorruptCiphertextLoadsAsEmpty() {
	ctx := context.Background()
	require.NoError(s.T(), s.store.Save(ctx, map[string]models.Record{
		"alice@example.com": {Token: "a1b2c3", Count: 0},
	}))

	raw, err := os.ReadFile(s.path)
	require.NoError(s.T(), err)
	raw[len(raw)/2] ^= 0xff
	require.NoError(s.T(), os.WriteFile(s.path, raw, 0o600))

	records, err := s.store.Load(ctx)
	require.NoError(s.T(), err, "corrupt store must recover as empty, not error")
	assert.Empty(s.T(), records)
}

func (s *FileStoreSuite) TestGarbageFileLoadsAsEmpty() {
	require.NoError(s.T(), os.WriteFile(s.path, []byte("not ciphertext at all"), 0o600))

	records, err := s.store.Load(context.Background())
	require.NoError(s.T(), err)
	assert.Empty(s.T(), records)
}

func (s *FileStoreSuite) TestSaveLeavesNoTempFilesBehind() {
	ctx := context.Background()
	require.NoError(s.T(), s.store.Save(ctx, map[string]models.Record{}))

	entries, err := os.ReadDir(filepath.Dir(s.path))
	require.NoError(s.T(), err)
	require.Len(s.T(), entries, 1)
	assert.Equal(s.T(), filepath.Base(s.path), entries[0].Name())
}
