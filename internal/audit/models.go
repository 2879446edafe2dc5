package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is one authenticated action captured in the journal. Events are
// created once, appended, and never mutated or deleted.
type Event struct {
	Email      string
	Timestamp  time.Time
	ReportName string
	// Action tags the privileged action taken, e.g. "start_research",
	// "download_pdf", "send_email".
	Action string
	// Extra holds free-form fields flattened into the same JSON object as
	// the core fields. Core field names win on collision.
	Extra map[string]any
}

// Reserved JSON keys for the core fields. "button_clicked" is the journal's
// historical name for the action tag; changing it would orphan existing logs.
const (
	keyEmail      = "email"
	keyTimestamp  = "timestamp"
	keyReportName = "report_name"
	keyAction     = "button_clicked"
)

// MarshalJSON flattens the event into a single JSON object:
// {"email", "timestamp", "report_name", "button_clicked", ...extra}.
func (e Event) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(e.Extra)+4)
	for k, v := range e.Extra {
		fields[k] = v
	}
	fields[keyEmail] = e.Email
	fields[keyTimestamp] = e.Timestamp.Format(time.RFC3339Nano)
	fields[keyReportName] = e.ReportName
	fields[keyAction] = e.Action
	return json.Marshal(fields)
}

// UnmarshalJSON splits the flat object back into core fields and Extra. An
// unparseable timestamp leaves Timestamp zero rather than failing the whole
// record; time-window queries simply skip such events.
func (e *Event) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("parsing audit event: %w", err)
	}

	e.Email, _ = fields[keyEmail].(string)
	e.ReportName, _ = fields[keyReportName].(string)
	e.Action, _ = fields[keyAction].(string)

	if raw, ok := fields[keyTimestamp].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			e.Timestamp = ts
		}
	}

	delete(fields, keyEmail)
	delete(fields, keyTimestamp)
	delete(fields, keyReportName)
	delete(fields, keyAction)
	if len(fields) > 0 {
		e.Extra = fields
	} else {
		e.Extra = nil
	}
	return nil
}
