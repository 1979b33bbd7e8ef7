// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/stackit/internal/access"
	"github.com/carterperez-dev/stackit/internal/core"
	"github.com/carterperez-dev/stackit/internal/middleware"
	"github.com/carterperez-dev/stackit/internal/notification"
)

type fakeDashboard struct{}

func (fakeDashboard) Dashboard(context.Context) (*Dashboard, error) {
	return &Dashboard{
		Totals:          Counts{Users: 3, Questions: 5, Answers: 8, Votes: 13},
		Today:           Counts{Questions: 1},
		RecentQuestions: []RecentQuestion{{ID: "q1", Title: "Buffered channels"}},
		RecentUsers:     []RecentUser{},
	}, nil
}

type recordingModerator struct {
	deleted []string
	actors  []access.Actor
}

func (m *recordingModerator) Delete(_ context.Context, actor access.Actor, id string) error {
	if id == "missing" {
		return fmt.Errorf("delete: %w", core.ErrNotFound)
	}
	m.deleted = append(m.deleted, id)
	m.actors = append(m.actors, actor)
	return nil
}

func as(actor access.Actor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithActor(r.Context(), actor)))
		})
	}
}

var adminActor = access.Actor{UserID: "root", Role: access.RoleAdmin}

func newRouter(h *Handler, actor access.Actor, mounts ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.Guards{
		Authenticate: as(actor),
		AdminOnly:    middleware.RequireAdmin,
	}, mounts...)
	return r
}

func TestDashboard(t *testing.T) {
	h := NewHandler(HandlerConfig{Repository: fakeDashboard{}})

	w := httptest.NewRecorder()
	newRouter(h, adminActor).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data Dashboard `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 13, body.Data.Totals.Votes)
	assert.Equal(t, 1, body.Data.Today.Questions)
	require.Len(t, body.Data.RecentQuestions, 1)
}

func TestNonAdminRejected(t *testing.T) {
	h := NewHandler(HandlerConfig{Repository: fakeDashboard{}})
	r := newRouter(h, access.Actor{UserID: "u", Role: access.RoleUser})

	for _, path := range []string{"/admin/dashboard", "/admin/stats"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
}

func TestModerationDeletes(t *testing.T) {
	questions := &recordingModerator{}
	answers := &recordingModerator{}
	h := NewHandler(HandlerConfig{Questions: questions, Answers: answers})
	r := newRouter(h, adminActor)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/questions/q1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/answers/a1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/answers/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []string{"q1"}, questions.deleted)
	assert.Equal(t, []string{"a1"}, answers.deleted)
	assert.Equal(t, adminActor, questions.actors[0])
}

func TestSystemStats(t *testing.T) {
	h := NewHandler(HandlerConfig{
		DBStats:    func() sql.DBStats { return sql.DBStats{OpenConnections: 4, InUse: 1} },
		RedisStats: func() *redis.PoolStats { return &redis.PoolStats{TotalConns: 2} },
		DBPing:     func(context.Context) error { return nil },
		RedisPing:  func(context.Context) error { return fmt.Errorf("down") },
		NotificationStats: func() notification.Stats {
			return notification.Stats{Enqueued: 7, Persisted: 6, QueueDepth: 1}
		},
	})

	w := httptest.NewRecorder()
	newRouter(h, adminActor).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Data.Database.Healthy)
	assert.False(t, body.Data.Redis.Healthy)
	assert.Equal(t, 4, body.Data.Database.Stats.OpenConnections)
	assert.Equal(t, uint32(2), body.Data.Redis.Stats.TotalConns)
	require.NotNil(t, body.Data.Notifications)
	assert.Equal(t, uint64(7), body.Data.Notifications.Enqueued)
	assert.NotEmpty(t, body.Data.Runtime.GoVersion)
}

func TestMountsShareGuards(t *testing.T) {
	h := NewHandler(HandlerConfig{})
	mount := func(r chi.Router) {
		r.Get("/users", func(w http.ResponseWriter, _ *http.Request) { core.OK(w, "users") })
	}

	w := httptest.NewRecorder()
	newRouter(h, adminActor, mount).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	newRouter(h, access.Actor{UserID: "u", Role: access.RoleUser}, mount).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
