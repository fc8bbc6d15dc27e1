package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestReadiness(t *testing.T) {
	h := New("test")
	h.RegisterCheck("registry", func(context.Context) error { return nil })

	w := serve(h, "/health/ready")
	require.Equal(t, http.StatusOK, w.Code)

	h.RegisterCheck("audit", func(context.Context) error { return errors.New("broker unreachable") })
	w = serve(h, "/health/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "up", body.Checks["registry"])
	assert.Equal(t, "down: broker unreachable", body.Checks["audit"])
}

func TestLivenessAndStatus(t *testing.T) {
	h := New("test")

	assert.Equal(t, http.StatusOK, serve(h, "/health/live").Code)

	w := serve(h, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var body StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "test", body.Environment)
	assert.Equal(t, Version, body.Version)
}
