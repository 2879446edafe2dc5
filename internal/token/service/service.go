// Package service implements token issuance and quota-checked validation.
//
// The service exists to bound how many times a single issued credential can
// trigger the expensive research run, independent of how many times the UI
// lets a user click a button. The quota is therefore enforced here, not in
// the caller.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"

	"accessgate/internal/audit"
	"accessgate/internal/token/models"
	dErrors "accessgate/pkg/domain-errors"
	"accessgate/pkg/platform/sentinel"
)

// Validation outcomes, used as metric labels and audit extras.
const (
	OutcomeAllowed       = "allowed"
	OutcomeEntryNotFound = "entry_not_found"
	OutcomeTokenMismatch = "token_mismatch"
	OutcomeQuotaExceeded = "quota_exceeded"
	OutcomeError         = "error"
)

// tokenBytes of entropy per generated token; hex-encoded to twice as many
// characters.
const tokenBytes = 16

// Store abstracts the persisted email -> record mapping.
type Store interface {
	Load(ctx context.Context) (map[string]models.Record, error)
	Save(ctx context.Context, records map[string]models.Record) error
}

// AuditSink receives one event per issuance and per validation outcome.
type AuditSink interface {
	Append(ctx context.Context, event audit.Event) error
}

// Metrics abstracts the counters the service increments.
type Metrics interface {
	IncrementIssued()
	IncrementValidation(outcome string)
}

// Result reports a successful validation and how many uses remain.
type Result struct {
	Remaining int
}

// Service serializes all load -> mutate -> save sequences on the store with a
// process-wide mutex: two racing validations must never both observe a count
// below the limit and both persist an increment.
type Service struct {
	store   Store
	limit   int
	logger  *slog.Logger
	metrics Metrics
	sink    AuditSink

	mu sync.Mutex
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithUsageLimit overrides the default per-token usage limit.
func WithUsageLimit(limit int) Option {
	return func(s *Service) {
		s.limit = limit
	}
}

func WithMetrics(metrics Metrics) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// WithAuditSink mirrors issuance and validation outcomes into the audit
// journal.
func WithAuditSink(sink AuditSink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("token store is required")
	}

	svc := &Service{
		store:  store,
		limit:  models.DefaultUsageLimit,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.limit <= 0 {
		return nil, fmt.Errorf("usage limit must be positive, got %d", svc.limit)
	}

	return svc, nil
}

// UsageLimit returns the configured per-token usage limit.
func (s *Service) UsageLimit() int {
	return s.limit
}

// Issue stores a fresh record for email with a zero usage count, overwriting
// any prior record: re-issuance implicitly resets the quota. A new random
// token is generated unless the caller pins one. Returns the effective token.
func (s *Service) Issue(ctx context.Context, email, pinned string) (string, error) {
	if email == "" {
		return "", dErrors.New(dErrors.CodeValidation, "email is required")
	}

	token := pinned
	if token == "" {
		generated, err := generateToken()
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate token")
		}
		token = generated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Load(ctx)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not load token store")
	}
	records[email] = models.Record{Token: token, Count: 0}
	if err := s.store.Save(ctx, records); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not persist token store")
	}

	if s.metrics != nil {
		s.metrics.IncrementIssued()
	}
	s.logger.InfoContext(ctx, "token issued",
		"email", email,
		"usage_limit", s.limit,
	)
	s.emitAudit(ctx, email, "issue_token", map[string]any{"usage_limit": s.limit})

	return token, nil
}

// Validate checks email and token against the store and consumes one use on
// success. Denials come back as coded errors wrapping the matching sentinel
// (sentinel.ErrNotFound, sentinel.ErrTokenMismatch, sentinel.ErrQuotaExceeded)
// so callers can branch on cause. A mismatch never mutates the usage count.
func (s *Service) Validate(ctx context.Context, email, token string) (*Result, error) {
	if email == "" || token == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and token are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Load(ctx)
	if err != nil {
		s.countValidation(OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load token store")
	}

	record, ok := records[email]
	if !ok {
		s.deny(ctx, email, OutcomeEntryNotFound)
		return nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "no token issued for this email")
	}
	if record.Token != token {
		s.deny(ctx, email, OutcomeTokenMismatch)
		return nil, dErrors.Wrap(sentinel.ErrTokenMismatch, dErrors.CodeUnauthorized, "token does not match")
	}
	if record.Exhausted(s.limit) {
		s.deny(ctx, email, OutcomeQuotaExceeded)
		return nil, dErrors.Wrap(sentinel.ErrQuotaExceeded, dErrors.CodeQuotaExceeded, "usage limit reached, request a new token")
	}

	record.Count++
	records[email] = record
	if err := s.store.Save(ctx, records); err != nil {
		s.countValidation(OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not persist token store")
	}

	s.countValidation(OutcomeAllowed)
	s.logger.InfoContext(ctx, "token validated",
		"email", email,
		"used", record.Count,
		"usage_limit", s.limit,
	)
	s.emitAudit(ctx, email, "validate_token", map[string]any{
		"outcome": OutcomeAllowed,
		"used":    record.Count,
	})

	return &Result{Remaining: s.limit - record.Count}, nil
}

func (s *Service) deny(ctx context.Context, email, outcome string) {
	s.countValidation(outcome)
	s.logger.WarnContext(ctx, "token validation denied",
		"email", email,
		"outcome", outcome,
	)
	s.emitAudit(ctx, email, "validate_token", map[string]any{"outcome": outcome})
}

func (s *Service) countValidation(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementValidation(outcome)
	}
}

func (s *Service) emitAudit(ctx context.Context, email, action string, extra map[string]any) {
	if s.sink == nil {
		return
	}
	event := audit.Event{
		Email:  email,
		Action: action,
		Extra:  extra,
	}
	if err := s.sink.Append(ctx, event); err != nil {
		// Audit completeness is best-effort; the token operation itself
		// already committed.
		s.logger.WarnContext(ctx, "audit append failed",
			"email", email,
			"action", action,
			"error", err,
		)
	}
}

// generateToken returns a cryptographically random hex token.
func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
