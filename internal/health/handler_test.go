// AngelaMos | 2026
// handler_test.go

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

func healthy(context.Context) error { return nil }

func serve(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, ReadinessResponse) {
	t.Helper()
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestReadinessAllHealthy(t *testing.T) {
	h := NewHandler(
		Probe{Name: "database", Checker: CheckFunc(healthy)},
		Probe{Name: "redis", Checker: CheckFunc(healthy)},
	)

	w, body := serve(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body.Status)
	require.Len(t, body.Checks, 2)
	assert.Equal(t, "database", body.Checks[0].Name)
	assert.Equal(t, "redis", body.Checks[1].Name)
}

func TestReadinessDegraded(t *testing.T) {
	h := NewHandler(
		Probe{Name: "database", Checker: CheckFunc(healthy)},
		Probe{Name: "redis", Checker: CheckFunc(func(context.Context) error { return errors.New("refused") })},
		Probe{Name: "broker"},
	)

	w, body := serve(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", body.Status)
	assert.True(t, body.Checks[0].Healthy)
	assert.False(t, body.Checks[1].Healthy)
	assert.Equal(t, "ping failed", body.Checks[1].Message)
	assert.Equal(t, "broker checker not configured", body.Checks[2].Message)
}

func TestShutdownFailsProbes(t *testing.T) {
	h := NewHandler()

	w, _ := serve(t, h, "/livez")
	assert.Equal(t, http.StatusOK, w.Code)

	h.SetReady(false)
	w, body := serve(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not_ready", body.Status)

	h.SetShutdown(true)
	for _, path := range []string{"/healthz", "/livez", "/readyz"} {
		w, body = serve(t, h, path)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		assert.Equal(t, "shutting_down", body.Status, path)
	}
}
