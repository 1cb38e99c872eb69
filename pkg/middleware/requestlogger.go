package middleware

import (
	"log/slog"
	"net/http"

	"github.com/teamboardhq/teamboard/pkg/logger"
)

// RequestLogger stores a request-scoped logger in context, pre-tagged with
// correlation_id, user_id, trace_id, and span_id. Handlers pull it back out
// with logger.FromContext. Mount it after RequestLogging and Tracing so both
// the correlation ID and the span are already in context, and after Auth when
// the user ID should come from validated claims.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Services that terminate auth upstream pass identity via header.
			userID := UserIDFromContext(ctx)
			if userID == "" {
				userID = r.Header.Get("X-User-ID")
			}
			if userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
