// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"

	"github.com/pawmart/go-backend/internal/core"
)

// SessionJanitor sweeps session rows whose expiry has passed but that no
// lookup has reaped yet. auth.Service implements it.
type SessionJanitor interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// Handler serves admin-only operational endpoints: pool and runtime
// introspection plus the expired-session sweep.
type Handler struct {
	db       *core.Database
	redis    *core.Redis
	sessions SessionJanitor
}

func NewHandler(db *core.Database, redis *core.Redis, sessions SessionJanitor) *Handler {
	return &Handler{db: db, redis: redis, sessions: sessions}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/db", h.GetDatabaseStats)
		r.Get("/stats/redis", h.GetRedisStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
		r.Post("/sessions/purge-expired", h.PurgeExpiredSessions)
	})
}

// PurgeExpiredSessions deletes session rows that lazy expiry has not
// yet reaped.
func (h *Handler) PurgeExpiredSessions(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		core.NotFound(w, "session janitor")
		return
	}

	purged, err := h.sessions.PurgeExpiredSessions(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, PurgeSessionsResponse{Purged: purged})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	core.OK(w, SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: h.db != nil && h.db.Ping(ctx) == nil,
			Stats:   h.dbSnapshot(),
		},
		Redis: RedisStatus{
			Healthy: h.redis != nil && h.redis.Ping(ctx) == nil,
			Stats:   h.redisSnapshot(),
		},
		Runtime: runtimeSnapshot(),
	})
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.dbSnapshot())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.redisSnapshot())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, runtimeSnapshot())
}

func (h *Handler) dbSnapshot() *DBPoolStats {
	if h.db == nil {
		return nil
	}

	s := h.db.Stats()
	return &DBPoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration.String(),
		MaxIdleClosed:      s.MaxIdleClosed,
		MaxIdleTimeClosed:  s.MaxIdleTimeClosed,
		MaxLifetimeClosed:  s.MaxLifetimeClosed,
	}
}

func (h *Handler) redisSnapshot() *RedisPoolStats {
	if h.redis == nil {
		return nil
	}

	s := h.redis.PoolStats()
	return &RedisPoolStats{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
		StaleConns: s.StaleConns,
	}
}

func runtimeSnapshot() RuntimeStats {
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

type SystemStatsResponse struct {
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
	MaxIdleClosed      int64  `json:"max_idle_closed"`
	MaxIdleTimeClosed  int64  `json:"max_idle_time_closed"`
	MaxLifetimeClosed  int64  `json:"max_lifetime_closed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type PurgeSessionsResponse struct {
	Purged int64 `json:"purged"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
