package models

// DefaultUsageLimit is the number of validated uses a freshly issued token
// grants before re-issuance is required.
const DefaultUsageLimit = 2

// Record is the stored credential for one email: the opaque token plus how
// many validated uses it has consumed. The on-disk JSON field names are the
// wire format of the encrypted store and must not change.
type Record struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Exhausted reports whether the record has consumed its usage allowance.
func (r Record) Exhausted(limit int) bool {
	return r.Count >= limit
}
