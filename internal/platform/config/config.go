package config

import (
	"encoding/base64"
	"fmt"
	"os"

	"accessgate/pkg/platform/crypto"
)

// Service captures process-level configuration for the access gate.
type Service struct {
	Addr           string
	TokenStorePath string
	AuditLogPath   string
	AdminToken     string
	EncryptionKey  []byte
}

// FromEnv builds the service config from environment variables so main stays
// lean. The encryption key is mandatory: the gate must never run with
// encryption silently disabled, so a missing or malformed key is a fatal
// configuration error rather than a fallback.
func FromEnv() (Service, error) {
	addr := os.Getenv("GATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	storePath := os.Getenv("GATE_TOKEN_STORE")
	if storePath == "" {
		storePath = "tokens.json"
	}

	logPath := os.Getenv("GATE_AUDIT_LOG")
	if logPath == "" {
		logPath = "research.log"
	}

	key, err := EncryptionKeyFromEnv()
	if err != nil {
		return Service{}, err
	}

	return Service{
		Addr:           addr,
		TokenStorePath: storePath,
		AuditLogPath:   logPath,
		AdminToken:     os.Getenv("GATE_ADMIN_TOKEN"),
		EncryptionKey:  key,
	}, nil
}

// EncryptionKeyFromEnv reads and decodes the symmetric key from
// GATE_ENCRYPTION_KEY (standard base64, 32 bytes decoded). Shared with the
// offline inspection tool, which needs the key but not the rest of the
// server config.
func EncryptionKeyFromEnv() ([]byte, error) {
	encoded := os.Getenv("GATE_ENCRYPTION_KEY")
	if encoded == "" {
		return nil, fmt.Errorf("GATE_ENCRYPTION_KEY not set in environment")
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("GATE_ENCRYPTION_KEY is not valid base64: %w", err)
	}
	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("GATE_ENCRYPTION_KEY must decode to %d bytes, got %d", crypto.KeySize, len(key))
	}
	return key, nil
}
