package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTelemetryProvider_Disabled(t *testing.T) {
	provider, err := NewTelemetryProvider(&Config{Enabled: false}, nil)
	require.NoError(t, err)
	assert.NotNil(t, provider.GetTracer())
	assert.NotNil(t, provider.GetMeter())
}

func TestNewTelemetryProvider_Enabled(t *testing.T) {
	provider, err := NewTelemetryProvider(&Config{
		Enabled:     true,
		ServiceName: "test-service",
		Version:     "1.0.0",
		Environment: "test",
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, provider.GetTracer())
	assert.NotNil(t, provider.GetMeter())
}

func TestTelemetryProvider_CreateSpan(t *testing.T) {
	provider, err := NewTelemetryProvider(&Config{Enabled: true, ServiceName: "test-service"}, nil)
	require.NoError(t, err)

	ctx, span := provider.CreateSpan(context.Background(), "test-span")
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	span.End()
}

func TestTelemetryProvider_TelemetryMiddleware(t *testing.T) {
	provider, err := NewTelemetryProvider(&Config{Enabled: true, ServiceName: "test-service"}, nil)
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	wrapped := provider.TelemetryMiddleware()(handler)

	req := httptest.NewRequest("GET", "/status/42", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestTelemetryProvider_Shutdown(t *testing.T) {
	provider, err := NewTelemetryProvider(&Config{Enabled: true, ServiceName: "test-service"}, nil)
	require.NoError(t, err)
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestSanitizeEndpoint(t *testing.T) {
	tests := []struct{ input, expected string }{
		{"/status/123", "/status/{id}"},
		{"/status/123/history/456", "/status/{id}/history/{id}"},
		{"/status", "/status"},
		{"/status?verbose=true", "/status"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, sanitizeEndpoint(tt.input), "input: %s", tt.input)
	}
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, isNumeric("123"))
	assert.True(t, isNumeric("0"))
	assert.False(t, isNumeric("abc"))
	assert.False(t, isNumeric("12a"))
	assert.False(t, isNumeric(""))
}
