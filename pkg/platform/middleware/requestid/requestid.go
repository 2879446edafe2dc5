// Package requestid assigns each request a UUID and a request-scoped time.
// Apply early in the chain so downstream logging can correlate entries.
package requestid

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"accessgate/pkg/requestcontext"
)

// Assign generates a request ID (honoring an inbound X-Request-ID header) and
// pins the request time, making both available via pkg/requestcontext.
func Assign(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
