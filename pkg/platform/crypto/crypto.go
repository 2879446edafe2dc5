// Package crypto wraps an authenticated-encryption primitive for the token
// store and the audit journal. The key is supplied once at process start; the
// package never generates or persists keys itself.
//
// Ciphertext layout is nonce || sealed bytes. SealLine/OpenLine add a url-safe
// base64 encoding for line-oriented storage in the audit journal.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"accessgate/pkg/platform/sentinel"
)

// KeySize is the required symmetric key length in bytes.
const KeySize = chacha20poly1305.KeySize

// Sealer performs XChaCha20-Poly1305 authenticated encryption with a single
// symmetric key. Safe for concurrent use.
type Sealer struct {
	aead cipher.AEAD
}

// New constructs a Sealer from a raw 32-byte key.
func New(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext with a fresh random nonce. The nonce is prefixed to
// the returned ciphertext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts nonce-prefixed ciphertext. Truncated, tampered, or
// foreign-key ciphertext returns an error wrapping
// sentinel.ErrCiphertextInvalid, so callers can distinguish "corrupt" from
// "absent" without string matching.
func (s *Sealer) Open(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < s.aead.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce: %w", sentinel.ErrCiphertextInvalid)
	}
	nonce, sealed := ciphertext[:s.aead.NonceSize()], ciphertext[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("opening ciphertext: %w", sentinel.ErrCiphertextInvalid)
	}
	return plaintext, nil
}

// SealLine encrypts plaintext and encodes the result as url-safe base64,
// suitable for one newline-terminated journal record.
func (s *Sealer) SealLine(plaintext []byte) (string, error) {
	ciphertext, err := s.Seal(plaintext)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// OpenLine decodes a url-safe base64 record and decrypts it. Malformed base64
// is reported as invalid ciphertext, same as a failed decrypt.
func (s *Sealer) OpenLine(encoded string) ([]byte, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding record: %w", sentinel.ErrCiphertextInvalid)
	}
	return s.Open(ciphertext)
}
