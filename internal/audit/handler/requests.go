package handler

import (
	"strings"

	"accessgate/internal/audit"
	dErrors "accessgate/pkg/domain-errors"
)

// LogEventRequest is the HTTP request body for POST /events.
type LogEventRequest struct {
	Email      string         `json:"email"`
	ReportName string         `json:"report_name"`
	Action     string         `json:"action"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *LogEventRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	r.Action = strings.TrimSpace(r.Action)
	if r.Action == "" {
		return dErrors.New(dErrors.CodeValidation, "action is required")
	}
	return nil
}

// EventsResponse wraps a query result with its count.
type EventsResponse struct {
	Events []audit.Event `json:"events"`
	Count  int           `json:"count"`
}

// newEventsResponse keeps empty results serializing as [] rather than null.
func newEventsResponse(events []audit.Event) EventsResponse {
	if events == nil {
		events = []audit.Event{}
	}
	return EventsResponse{Events: events, Count: len(events)}
}
