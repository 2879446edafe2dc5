// Package audit maintains the encrypted, append-only journal of authenticated
// actions. Each record is encrypted independently so one corrupted line never
// invalidates the rest of the log.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"accessgate/pkg/platform/crypto"
)

// Metrics abstracts the counters the journal increments.
type Metrics interface {
	IncrementAppended()
	IncrementCorruptSkipped()
}

// Log is the append-only journal. Appends are serialized so concurrent
// callers never interleave bytes within a record; reads take no lock and see
// whatever records were fully committed at open time.
type Log struct {
	path    string
	sealer  *crypto.Sealer
	logger  *slog.Logger
	metrics Metrics

	mu sync.Mutex
}

// Option configures a Log.
type Option func(*Log)

// WithLogger sets the logger used for per-line corruption warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		l.logger = logger
	}
}

// WithMetrics counts appends and skipped corrupt lines.
func WithMetrics(metrics Metrics) Option {
	return func(l *Log) {
		l.metrics = metrics
	}
}

// New constructs a journal backed by the file at path. The file is created on
// first append.
func New(path string, sealer *crypto.Sealer, opts ...Option) (*Log, error) {
	if sealer == nil {
		return nil, fmt.Errorf("sealer is required")
	}
	l := &Log{
		path:   path,
		sealer: sealer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Append serializes the event, encrypts it independently of all other
// records, and appends it as one newline-terminated entry. Prior bytes are
// never rewritten. A zero timestamp is stamped with the current time.
func (l *Log) Append(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	plaintext, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serializing audit event: %w", err)
	}

	line, err := l.sealer.SealLine(plaintext)
	if err != nil {
		return fmt.Errorf("encrypting audit event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	// One buffered write per record keeps the entry intact even if a later
	// append fails.
	if _, err := f.Write(append([]byte(line), '\n')); err != nil {
		return fmt.Errorf("appending audit event: %w", err)
	}
	if l.metrics != nil {
		l.metrics.IncrementAppended()
	}
	return nil
}

// DecryptAll streams the journal line by line and returns the events in
// append order. Lines that fail to decrypt or parse are skipped with a
// warning: audit completeness is best-effort, so the log degrades gracefully
// under partial corruption.
func (l *Log) DecryptAll(ctx context.Context) ([]Event, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if line == "" {
			continue
		}

		plaintext, err := l.sealer.OpenLine(line)
		if err != nil {
			l.logger.WarnContext(ctx, "skipping undecryptable audit record",
				"path", l.path,
				"line", lineNumber,
				"error", err,
			)
			l.countCorruptSkipped()
			continue
		}

		var event Event
		if err := json.Unmarshal(plaintext, &event); err != nil {
			l.logger.WarnContext(ctx, "skipping unparseable audit record",
				"path", l.path,
				"line", lineNumber,
				"error", err,
			)
			l.countCorruptSkipped()
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return events, nil
}

func (l *Log) countCorruptSkipped() {
	if l.metrics != nil {
		l.metrics.IncrementCorruptSkipped()
	}
}

// Export writes every decryptable event as an indented JSON array, for
// offline audits.
func (l *Log) Export(ctx context.Context, w io.Writer) error {
	events, err := l.DecryptAll(ctx)
	if err != nil {
		return err
	}
	if events == nil {
		events = []Event{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(events)
}
