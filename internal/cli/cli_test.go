package cli

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accessgate/internal/audit"
	"accessgate/internal/token/models"
	"accessgate/internal/token/store"
	"accessgate/pkg/platform/crypto"
)

// setupKey generates a key, exports it the way the server and CLI read it,
// and returns a sealer for seeding fixture files.
func setupKey(t *testing.T) *crypto.Sealer {
	t.Helper()
	key := make([]byte, crypto.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	t.Setenv("GATE_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(key))

	sealer, err := crypto.New(key)
	require.NoError(t, err)
	return sealer
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokensCommandListsEntries(t *testing.T) {
	sealer := setupKey(t)
	path := filepath.Join(t.TempDir(), "tokens.json")

	fileStore, err := store.NewFileStore(path, sealer)
	require.NoError(t, err)
	require.NoError(t, fileStore.Save(context.Background(), map[string]models.Record{
		"alice@example.com": {Token: "a1b2c3", Count: 1},
		"bob@example.com":   {Token: "d4e5f6", Count: 0},
	}))

	out, err := runCommand(t, "--store", path, "tokens")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@example.com: a1b2c3 (used 1 times)")
	assert.Contains(t, out, "bob@example.com: d4e5f6 (used 0 times)")
}

func TestTokensCommandMissingStore(t *testing.T) {
	setupKey(t)
	path := filepath.Join(t.TempDir(), "tokens.json")

	out, err := runCommand(t, "--store", path, "tokens")
	require.NoError(t, err)
	assert.Contains(t, out, "does not exist")
}

func TestTokensCommandMissingKey(t *testing.T) {
	t.Setenv("GATE_ENCRYPTION_KEY", "")

	_, err := runCommand(t, "tokens")
	require.Error(t, err)
}

func TestTokensCommandWrongKey(t *testing.T) {
	sealer := setupKey(t)
	path := filepath.Join(t.TempDir(), "tokens.json")

	fileStore, err := store.NewFileStore(path, sealer)
	require.NoError(t, err)
	require.NoError(t, fileStore.Save(context.Background(), map[string]models.Record{
		"alice@example.com": {Token: "a1b2c3", Count: 0},
	}))

	// Rotate the env key so the store no longer decrypts.
	setupKey(t)

	_, err = runCommand(t, "--store", path, "tokens")
	require.Error(t, err)
}

func TestAuditExportToFile(t *testing.T) {
	sealer := setupKey(t)
	dir := t.TempDir()
	logPath := filepath.Join(dir, "research.log")

	journal, err := audit.New(logPath, sealer)
	require.NoError(t, err)
	require.NoError(t, journal.Append(context.Background(), audit.Event{
		Email:      "alice@example.com",
		ReportName: "fusion",
		Action:     "start_research",
	}))

	exportPath := filepath.Join(dir, "export.json")
	out, err := runCommand(t, "--log", logPath, "audit", "export", "-o", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported audit journal")

	raw, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	var exported []map[string]any
	require.NoError(t, json.Unmarshal(raw, &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "alice@example.com", exported[0]["email"])
}

func TestAuditStats(t *testing.T) {
	sealer := setupKey(t)
	logPath := filepath.Join(t.TempDir(), "research.log")

	journal, err := audit.New(logPath, sealer)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		require.NoError(t, journal.Append(context.Background(), audit.Event{
			Email:  "alice@example.com",
			Action: "start_research",
		}))
	}

	out, err := runCommand(t, "--log", logPath, "audit", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total events:       2")
	assert.Contains(t, out, "Unique users:       1")
	assert.Contains(t, out, "Most active user:   alice@example.com")
}
