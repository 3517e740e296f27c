package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/pizza-api/internal/validate"
)

// HTTPAdapter serves a Router over net/http
type HTTPAdapter struct {
	router *Router
	logger *slog.Logger
}

// NewHTTPAdapter creates an http.Handler that forwards every request to router
func NewHTTPAdapter(router *Router, logger *slog.Logger) *HTTPAdapter {
	return &HTTPAdapter{
		router: router,
		logger: logger,
	}
}

// ServeHTTP converts r into a Request, dispatches it and writes the Response
func (a *HTTPAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// One byte past the cap is enough for the validator to reject the body.
	body, err := io.ReadAll(io.LimitReader(r.Body, validate.MaxBodySize+1))
	if err != nil {
		a.logger.Warn("failed to read request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", a.logger)
		return
	}

	req := Request{
		Method:          r.Method,
		Path:            r.URL.EscapedPath(),
		QueryParameters: queryParameters(r.URL.RawQuery),
		Headers:         firstValues(r.Header),
		Body:            string(body),
	}

	writeResponse(w, a.router.Dispatch(r.Context(), req), a.logger)
}

func firstValues(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// queryParameters decodes a raw query string the way path segments are decoded:
// percent-escapes are resolved and "+" stays a literal plus, so "?phone=+380..."
// keeps its country prefix. The first value of a repeated key wins.
func queryParameters(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = unescape(key)
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = unescape(value)
	}
	return out
}
