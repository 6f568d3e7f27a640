// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/v1/users/42", "/v1/users/{id}"},
		{
			"/v1/users/6f1c2a90-0000-4000-8000-000000000001/sessions",
			"/v1/users/{id}/sessions",
		},
		{"/v1/auth/login", "/v1/auth/login"},
	}

	for _, tc := range cases {
		if got := normalizeEndpoint(tc.in); got != tc.want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKeyByIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.7:4242"

	if got := KeyByIP(r); got != "ratelimit:ip:198.51.100.7" {
		t.Errorf("KeyByIP = %q", got)
	}

	// The last X-Forwarded-For entry is the one our own proxy appended;
	// earlier entries are client-controlled.
	r.Header.Set("X-Forwarded-For", "203.0.113.50, 10.0.0.1")
	if got := KeyByIP(r); got != "ratelimit:ip:10.0.0.1" {
		t.Errorf("KeyByIP with XFF = %q", got)
	}
}

func TestLocalLimiter_Burst(t *testing.T) {
	l := &localLimiter{entries: make(map[string]*limiterEntry)}
	limit := PerMinute(60, 3)

	allowed := 0
	for range 5 {
		if res := l.allow("k", limit); res.Allowed == 1 {
			allowed++
		}
	}

	if allowed != 3 {
		t.Fatalf("allowed = %d, want the burst of 3", allowed)
	}

	if res := l.allow("k", limit); res.RetryAfter <= 0 {
		t.Errorf("denied result must carry a positive RetryAfter, got %v",
			res.RetryAfter)
	}
}
