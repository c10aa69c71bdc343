package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const correlationIDHeader = "X-Correlation-ID"

type contextKey string

const correlationIDKey contextKey = "correlationID"

// CorrelationID accepts an inbound X-Correlation-ID header or mints a short
// one (the first segment of a UUID), stores it on the request context and
// echoes it on the response.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlationIDHeader)
		if id == "" {
			id = strings.SplitN(uuid.NewString(), "-", 2)[0]
		}

		w.Header().Set(correlationIDHeader, id)
		ctx := context.WithValue(r.Context(), correlationIDKey, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CorrelationIDFromContext returns the request correlation id, or an empty
// string outside a request scope.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)

	return id
}
