// AngelaMos | 2026
// database_test.go

package core

import (
	"testing"
	"time"
)

func TestWithJitter(t *testing.T) {
	t.Run("zero means no lifetime limit", func(t *testing.T) {
		if got := withJitter(0); got != 0 {
			t.Fatalf("withJitter(0) = %v, want 0", got)
		}
	})

	t.Run("negative passes through", func(t *testing.T) {
		if got := withJitter(-time.Second); got != -time.Second {
			t.Fatalf("withJitter(-1s) = %v, want -1s", got)
		}
	})

	t.Run("positive base gains bounded jitter", func(t *testing.T) {
		base := time.Hour
		for range 100 {
			got := withJitter(base)
			if got < base || got >= base+base/7 {
				t.Fatalf("withJitter(%v) = %v, outside [base, base+base/7)", base, got)
			}
		}
	})
}
