// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

// Probe is one named dependency check. Check must respect the context
// deadline; a probe that ignores it can stall the whole readiness
// response.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler serves liveness and readiness endpoints. Liveness only
// reflects process state; readiness additionally runs every registered
// probe.
type Handler struct {
	probes   []Probe
	ready    atomic.Bool
	shutdown atomic.Bool
}

// NewHandler starts not-ready; the caller flips SetReady(true) once
// startup is complete.
func NewHandler(probes ...Probe) *Handler {
	return &Handler{probes: probes}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// SetReady gates readiness independently of probe results, for warmup
// phases.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// SetShutdown makes both endpoints report unavailable so load
// balancers stop routing during drain.
func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		writeStatus(w, http.StatusServiceUnavailable, statusBody{Status: "shutting_down"})
		return
	}
	writeStatus(w, http.StatusOK, statusBody{Status: "ok"})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	switch {
	case h.shutdown.Load():
		writeStatus(w, http.StatusServiceUnavailable, statusBody{Status: "shutting_down"})
		return
	case !h.ready.Load():
		writeStatus(w, http.StatusServiceUnavailable, statusBody{Status: "not_ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	results := h.runProbes(ctx)

	status := "ok"
	code := http.StatusOK
	for _, res := range results {
		if !res.Healthy {
			status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeStatus(w, code, readinessBody{Status: status, Checks: results})
}

func (h *Handler) runProbes(ctx context.Context) []ProbeResult {
	results := make([]ProbeResult, len(h.probes))

	var wg sync.WaitGroup
	for i, probe := range h.probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = runProbe(ctx, probe)
		}()
	}
	wg.Wait()

	return results
}

func runProbe(ctx context.Context, probe Probe) ProbeResult {
	result := ProbeResult{Name: probe.Name, Healthy: true}

	if probe.Check == nil {
		result.Healthy = false
		result.Message = "probe not configured"
		return result
	}

	start := time.Now()
	err := probe.Check(ctx)
	result.Latency = time.Since(start).String()

	if err != nil {
		result.Healthy = false
		result.Message = "check failed"
	}

	return result
}

func writeStatus(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(body)
}

type statusBody struct {
	Status string `json:"status"`
}

type readinessBody struct {
	Status string        `json:"status"`
	Checks []ProbeResult `json:"checks"`
}

type ProbeResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
