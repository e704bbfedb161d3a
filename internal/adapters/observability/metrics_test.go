package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotel_booking/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so every vector has a series
	observability.ObserveHTTP("/api/hotels/", "GET", 200, 12*time.Millisecond)
	observability.ObserveAuth("login", "rejected")
	observability.ObserveAllocatorRetry("slug")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{"hotels_http_requests_total", "hotels_auth_events_total", "hotels_allocator_retries_total"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestNewLoggerLevel(t *testing.T) {
	if l := observability.NewLogger("prod", "warn"); l.GetLevel().String() != "warn" {
		t.Fatalf("level = %s", l.GetLevel())
	}
	if l := observability.NewLogger("dev", "nonsense"); l.GetLevel().String() != "info" {
		t.Fatalf("fallback level = %s", l.GetLevel())
	}
}
