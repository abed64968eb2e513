package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/adapters/observability"
	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample so counters are non-zero
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveCreate("http", domain.ErrSlugConflict)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	if !strings.Contains(out, "iconproperties_http_requests_total") {
		t.Fatalf("expected iconproperties_http_requests_total in output")
	}
	if !strings.Contains(out, `iconproperties_property_creates_total{outcome="slug_conflict",source="http"}`) {
		t.Fatalf("expected slug_conflict outcome in output:\n%s", out)
	}
}

func TestOutcome(t *testing.T) {
	cases := map[string]error{
		"created":             nil,
		"invalid_slug":        domain.ErrInvalidSlug,
		"persistence_failure": domain.ErrPersistence.Msg("boom"),
		"error":               errors.New("plain"),
	}
	for want, err := range cases {
		if got := observability.Outcome(err); got != want {
			t.Fatalf("Outcome(%v) = %s, want %s", err, got, want)
		}
	}
}
