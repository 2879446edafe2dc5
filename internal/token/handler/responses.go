package handler

// IssueResponse is returned from POST /admin/tokens. The token appears
// exactly once, here; it is never logged and never readable back out of the
// API.
type IssueResponse struct {
	Email      string `json:"email"`
	Token      string `json:"token"`
	UsageLimit int    `json:"usage_limit"`
}

// ValidateResponse is returned from POST /tokens/validate. Reason is set only
// on denial and carries one of the closed denial tags (entry_not_found,
// token_mismatch, quota_exceeded).
type ValidateResponse struct {
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"`
	Reason    string `json:"reason,omitempty"`
}
