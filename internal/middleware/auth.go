package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/pizza-api/internal/config"
	"github.com/Lixing-Zhang/pizza-api/internal/handlers"
)

// APIKeyHeader carries the API key on mutating requests
const APIKeyHeader = "X-Api-Key"

// APIKeyAuth requires a configured API key on POST, PUT and DELETE requests.
// Reads and preflights pass through. With no keys configured the check is off.
func APIKeyAuth(cfg config.AuthConfig, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(cfg.APIKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				handlers.WriteError(w, http.StatusUnauthorized, "Unauthorized: API key required", logger)
				return
			}

			if !validKey(cfg.APIKeys, apiKey) {
				logger.Warn("rejected API key", "method", r.Method, "path", r.URL.Path)
				handlers.WriteError(w, http.StatusForbidden, "Forbidden: Invalid API key", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func validKey(keys []string, candidate string) bool {
	valid := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(candidate)) == 1 {
			valid = true
		}
	}
	return valid
}
