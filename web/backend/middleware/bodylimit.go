package middleware

import (
	"net/http"
)

// RequestBodySizeLimitMiddleware caps incoming request bodies. Reads past
// the cap fail and the connection is closed, which keeps oversized
// operation payloads from exhausting memory.
func RequestBodySizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}
