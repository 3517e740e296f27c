package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/pizza-api/internal/apperr"
	"github.com/Lixing-Zhang/pizza-api/internal/models"
)

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		params   map[string]string
		wantID   string
		wantKind apperr.Kind
	}{
		{"nil params", nil, "", apperr.MissingIdentifier},
		{"no id key", map[string]string{"date": "2026-01-19"}, "", apperr.MissingIdentifier},
		{"blank id", map[string]string{"id": "   "}, "", apperr.InvalidIdentifier},
		{"empty id", map[string]string{"id": ""}, "", apperr.InvalidIdentifier},
		{"trimmed", map[string]string{"id": " 1768781883233 "}, "1768781883233", ""},
		{"uuid", map[string]string{"id": "550e8400-e29b-41d4-a716-446655440000"}, "550e8400-e29b-41d4-a716-446655440000", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Identifier(tt.params)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		body     string
		wantKind apperr.Kind
	}{
		{"valid", jsonHeaders, `{"name":"Margherita"}`, ""},
		{"charset suffix", map[string]string{"content-type": "Application/JSON; charset=utf-8"}, `{}`, ""},
		{"missing header", nil, `{"name":"x"}`, apperr.InvalidContentType},
		{"text plain", map[string]string{"Content-Type": "text/plain"}, `{"name":"x"}`, apperr.InvalidContentType},
		{"empty body still needs content type", nil, "", apperr.InvalidContentType},
		{"empty body is an empty object", jsonHeaders, "", ""},
		{"broken json", jsonHeaders, `{"name":`, apperr.InvalidJSON},
		{"wrong type", jsonHeaders, `{"name": 12}`, apperr.InvalidJSON},
		{"oversized valid json", jsonHeaders, `{"name":"` + strings.Repeat("a", MaxBodySize) + `"}`, apperr.PayloadTooLarge},
		{"oversized garbage", jsonHeaders, strings.Repeat("x", MaxBodySize+1), apperr.PayloadTooLarge},
		{"exactly at the cap", jsonHeaders, `"` + strings.Repeat("a", MaxBodySize-2) + `"`, apperr.InvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst models.CreateCatalogItemRequest
			err := DecodeBody(tt.headers, tt.body, &dst)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestPayload(t *testing.T) {
	err := Payload(models.CreateOrderRequest{Address: "Main St"}, "Invalid order")
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidPayload, apperr.KindOf(err))
	assert.Equal(t, "Invalid order: catalogItemId is required", apperr.PublicMessage(err))

	err = Payload(models.CreateCatalogItemRequest{Name: "Diavola", Price: -1}, "Invalid pizza data")
	require.Error(t, err)
	assert.Contains(t, apperr.PublicMessage(err), "price must be at least 0")

	assert.NoError(t, Payload(models.CreateOrderRequest{CatalogItemID: 1, Address: "Main St"}, "Invalid order"))
}

func TestHeader(t *testing.T) {
	h := map[string]string{"X-Api-Key": "k"}
	assert.Equal(t, "k", Header(h, "x-api-key"))
	assert.Equal(t, "", Header(h, "Authorization"))
}
