package handler

import (
	"strings"

	dErrors "accessgate/pkg/domain-errors"
)

const (
	maxEmailLength = 254
	maxTokenLength = 128
)

// IssueRequest is the HTTP request body for POST /admin/tokens.
type IssueRequest struct {
	Email string `json:"email"`
	// Token optionally pins the issued token instead of generating one.
	Token string `json:"token,omitempty"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *IssueRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(r.Email) > maxEmailLength {
		return dErrors.New(dErrors.CodeValidation, "email is too long")
	}
	if !strings.Contains(r.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "email must contain @")
	}
	if len(r.Token) > maxTokenLength {
		return dErrors.New(dErrors.CodeValidation, "token is too long")
	}
	return nil
}

// ValidateRequest is the HTTP request body for POST /tokens/validate.
type ValidateRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Validate validates the request.
// Note the token is matched exactly against the stored value, so no trimming
// or case folding happens here.
func (r *ValidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Token == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	if len(r.Email) > maxEmailLength || len(r.Token) > maxTokenLength {
		return dErrors.New(dErrors.CodeValidation, "email or token is too long")
	}
	return nil
}
