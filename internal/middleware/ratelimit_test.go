package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestLimiter(rate int, interval time.Duration, now *time.Time) *RateLimiter {
	// Built by hand so no sweep goroutine runs during the test.
	return &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		interval: interval,
		clock:    func() time.Time { return *now },
	}
}

func TestRateLimiterExhaustsAndRefills(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	rl := newTestLimiter(3, time.Minute, &now)

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request over the rate was allowed")
	}

	// A different client gets its own bucket.
	if !rl.allow("10.0.0.2") {
		t.Error("separate client was denied")
	}

	// A full interval later the bucket refills.
	now = now.Add(time.Minute)
	if !rl.allow("10.0.0.1") {
		t.Error("request after refill interval was denied")
	}
}

func TestRateLimiterSweepDropsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	rl := newTestLimiter(1, time.Minute, &now)

	rl.allow("10.0.0.1")
	now = now.Add(4 * time.Minute)
	rl.allow("10.0.0.2")
	rl.sweep()

	if _, ok := rl.buckets["10.0.0.1"]; ok {
		t.Error("idle bucket survived the sweep")
	}
	if _, ok := rl.buckets["10.0.0.2"]; !ok {
		t.Error("fresh bucket was swept")
	}
}

func TestRateLimiterMiddlewareAnswers429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	rl := newTestLimiter(1, time.Minute, &now)

	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do(); code != http.StatusOK {
		t.Fatalf("first request: status = %d, want %d", code, http.StatusOK)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want %d", code, http.StatusTooManyRequests)
	}
}
