package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the crypto layer return
// these (optionally wrapped) so services and handlers can translate them into
// domain errors or denial reasons.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: no token record exists for the given email
// - ErrTokenMismatch: a record exists but the presented token differs
// - ErrQuotaExceeded: the record's usage count has reached its limit
// - ErrCiphertextInvalid: ciphertext is truncated, tampered, or keyed wrong
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound          = errors.New("not found")
	ErrTokenMismatch     = errors.New("token mismatch")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrCiphertextInvalid = errors.New("ciphertext invalid")
)
