package audit

import (
	"context"
	"strings"
	"time"
)

// Read-side views. Each is computed over DecryptAll's result on every call,
// so results are consistent with the file contents at call time. None of them
// mutate the journal.

// ByUser returns all events for one email, in append order. The match is
// exact and case-sensitive, same as the token store's keys.
func (l *Log) ByUser(ctx context.Context, email string) ([]Event, error) {
	events, err := l.DecryptAll(ctx)
	if err != nil {
		return nil, err
	}
	var matched []Event
	for _, event := range events {
		if event.Email == email {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

// Recent returns events whose timestamp falls within the lookback window.
// Events with no parseable timestamp are skipped.
func (l *Log) Recent(ctx context.Context, window time.Duration) ([]Event, error) {
	events, err := l.DecryptAll(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-window)
	var recent []Event
	for _, event := range events {
		if event.Timestamp.IsZero() {
			continue
		}
		if !event.Timestamp.Before(cutoff) {
			recent = append(recent, event)
		}
	}
	return recent, nil
}

// Search returns events whose email or report name contains term,
// case-insensitively.
func (l *Log) Search(ctx context.Context, term string) ([]Event, error) {
	events, err := l.DecryptAll(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(term)
	var matched []Event
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Email), term) ||
			strings.Contains(strings.ToLower(event.ReportName), term) {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

// Stats summarizes the journal contents.
type Stats struct {
	TotalEvents      int            `json:"total_events"`
	UniqueUsers      int            `json:"unique_users"`
	MostActiveUser   string         `json:"most_active_user,omitempty"`
	MostCommonAction string         `json:"most_common_action,omitempty"`
	Earliest         time.Time      `json:"earliest,omitzero"`
	Latest           time.Time      `json:"latest,omitzero"`
	UserActivity     map[string]int `json:"user_activity,omitempty"`
	ActionCounts     map[string]int `json:"action_counts,omitempty"`
}

// Statistics computes totals, the most active user, the most common action,
// and the journal's time span.
func (l *Log) Statistics(ctx context.Context) (*Stats, error) {
	events, err := l.DecryptAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalEvents: len(events)}
	if len(events) == 0 {
		return stats, nil
	}

	stats.UserActivity = make(map[string]int)
	stats.ActionCounts = make(map[string]int)
	for _, event := range events {
		if event.Email != "" {
			stats.UserActivity[event.Email]++
		}
		if event.Action != "" {
			stats.ActionCounts[event.Action]++
		}
		if event.Timestamp.IsZero() {
			continue
		}
		if stats.Earliest.IsZero() || event.Timestamp.Before(stats.Earliest) {
			stats.Earliest = event.Timestamp
		}
		if stats.Latest.IsZero() || event.Timestamp.After(stats.Latest) {
			stats.Latest = event.Timestamp
		}
	}

	stats.UniqueUsers = len(stats.UserActivity)
	stats.MostActiveUser = maxKey(stats.UserActivity)
	stats.MostCommonAction = maxKey(stats.ActionCounts)
	return stats, nil
}

func maxKey(counts map[string]int) string {
	var best string
	bestCount := 0
	for key, count := range counts {
		if count > bestCount || (count == bestCount && best != "" && key < best) {
			best = key
			bestCount = count
		}
	}
	return best
}
