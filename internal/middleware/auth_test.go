package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lixing-Zhang/pizza-api/internal/config"
	"github.com/Lixing-Zhang/pizza-api/pkg/logger"
)

func TestAPIKeyAuth(t *testing.T) {
	cfg := config.AuthConfig{
		APIKeys: []string{"apitest", "testkey123"},
	}

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	})

	authHandler := APIKeyAuth(cfg, logger.Discard())(testHandler)

	tests := []struct {
		name           string
		method         string
		apiKey         string
		expectedStatus int
	}{
		{
			name:           "valid API key - apitest",
			method:         http.MethodPost,
			apiKey:         "apitest",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "valid API key - testkey123",
			method:         http.MethodDelete,
			apiKey:         "testkey123",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing API key",
			method:         http.MethodPut,
			apiKey:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid API key",
			method:         http.MethodPost,
			apiKey:         "wrongkey",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "reads need no key",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "preflight needs no key",
			method:         http.MethodOptions,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/order", nil)
			if tt.apiKey != "" {
				req.Header.Set(APIKeyHeader, tt.apiKey)
			}

			w := httptest.NewRecorder()
			authHandler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "success", w.Body.String())
			} else {
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestAPIKeyAuth_DisabledWithoutKeys(t *testing.T) {
	handler := APIKeyAuth(config.AuthConfig{}, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/pizza", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
}
