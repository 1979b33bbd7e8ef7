// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/stackit/internal/access"
	"github.com/carterperez-dev/stackit/internal/core"
	"github.com/carterperez-dev/stackit/internal/middleware"
	"github.com/carterperez-dev/stackit/internal/notification"
)

// Moderator soft-deletes content on behalf of an actor.
type Moderator interface {
	Delete(ctx context.Context, actor access.Actor, id string) error
}

type Handler struct {
	repo       Repository
	questions  Moderator
	answers    Moderator
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	redisPing  func(ctx context.Context) error
	dbPing     func(ctx context.Context) error
	dispatch   func() notification.Stats
}

type HandlerConfig struct {
	Repository        Repository
	Questions         Moderator
	Answers           Moderator
	DBStats           func() sql.DBStats
	RedisStats        func() *redis.PoolStats
	RedisPing         func(ctx context.Context) error
	DBPing            func(ctx context.Context) error
	NotificationStats func() notification.Stats
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		repo:       cfg.Repository,
		questions:  cfg.Questions,
		answers:    cfg.Answers,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		redisPing:  cfg.RedisPing,
		dbPing:     cfg.DBPing,
		dispatch:   cfg.NotificationStats,
	}
}

// RegisterRoutes mounts /admin behind authentication and the admin check.
// Each mount registers additional routes under the same guards.
func (h *Handler) RegisterRoutes(r chi.Router, g middleware.Guards, mounts ...func(chi.Router)) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(g.Auth())
		r.Use(g.Admin())

		for _, mount := range mounts {
			mount(r)
		}

		r.Get("/dashboard", h.GetDashboard)
		r.Delete("/questions/{questionID}", h.moderate(h.questions, "questionID", "question"))
		r.Delete("/answers/{answerID}", h.moderate(h.answers, "answerID", "answer"))

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/db", h.GetDatabaseStats)
		r.Get("/stats/redis", h.GetRedisStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
		r.Get("/stats/notifications", h.GetNotificationStats)
	})
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		core.NotFound(w, "dashboard")
		return
	}

	d, err := h.repo.Dashboard(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, d)
}

func (h *Handler) moderate(m Moderator, param, resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			core.NotFound(w, resource)
			return
		}

		actor := middleware.ActorOrGuest(r.Context())
		if err := m.Delete(r.Context(), actor, chi.URLParam(r, param)); err != nil {
			core.Fail(w, err, resource)
			return
		}

		core.NoContent(w)
	}
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	core.OK(w, SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: pingOK(ctx, h.dbPing),
			Stats:   h.getDBStats(),
		},
		Redis: RedisStatus{
			Healthy: pingOK(ctx, h.redisPing),
			Stats:   h.getRedisStats(),
		},
		Runtime:       readRuntime(),
		Notifications: h.getNotificationStats(),
	})
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.getDBStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.getRedisStats())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, readRuntime())
}

func (h *Handler) GetNotificationStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.getNotificationStats())
}

func pingOK(ctx context.Context, ping func(context.Context) error) bool {
	if ping == nil {
		return true
	}
	return ping(ctx) == nil
}

func readRuntime() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     mem.Alloc,
		MemSys:       mem.Sys,
		NumGC:        mem.NumGC,
	}
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

func (h *Handler) getNotificationStats() *notification.Stats {
	if h.dispatch == nil {
		return nil
	}
	stats := h.dispatch()
	return &stats
}
