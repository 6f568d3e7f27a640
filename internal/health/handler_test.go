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
)

func okProbe(name string) Probe {
	return Probe{Name: name, Check: func(context.Context) error { return nil }}
}

func failProbe(name string) Probe {
	return Probe{Name: name, Check: func(context.Context) error {
		return errors.New("down")
	}}
}

func TestLiveness(t *testing.T) {
	h := NewHandler(okProbe("database"))

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Liveness status = %d, want %d", rec.Code, http.StatusOK)
	}

	h.SetShutdown(true)
	rec = httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Liveness after shutdown = %d, want %d",
			rec.Code, http.StatusServiceUnavailable)
	}
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewHandler(okProbe("database"), okProbe("redis"))
	h.SetReady(true)

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Readiness status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Status string        `json:"status"`
		Checks []ProbeResult `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	if len(body.Checks) != 2 {
		t.Fatalf("checks = %d, want 2", len(body.Checks))
	}
	for _, check := range body.Checks {
		if !check.Healthy {
			t.Errorf("probe %q unhealthy: %s", check.Name, check.Message)
		}
	}
}

func TestReadiness_DegradedOnProbeFailure(t *testing.T) {
	h := NewHandler(okProbe("database"), failProbe("redis"))
	h.SetReady(true)

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Readiness status = %d, want %d",
			rec.Code, http.StatusServiceUnavailable)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Status != "degraded" {
		t.Errorf("status = %q, want degraded", body.Status)
	}
}

func TestReadiness_NotReadyUntilFlagged(t *testing.T) {
	h := NewHandler(okProbe("database"))

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Readiness before SetReady = %d, want %d",
			rec.Code, http.StatusServiceUnavailable)
	}

	h.SetReady(true)
	rec = httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Readiness after SetReady = %d, want %d",
			rec.Code, http.StatusOK)
	}
}
