package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// Inbound ids are echoed into logs and headers, so only short opaque tokens are accepted.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID propagates the caller's X-Request-Id or mints one, and tags the request logger with it.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if !validRequestID.MatchString(id) {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)
			if logg != nil {
				r = r.WithContext(logg.WithRequestID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}
