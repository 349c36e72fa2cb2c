package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"recipeshare.me/recipes/internal/metrics"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)
	c.RecordRequest("/recipes/:id", "GET", 200, 10*time.Millisecond)
	c.RecordRequest("/recipes/:id", "GET", 200, 20*time.Millisecond)
	c.RecordRequest("/recipes/:id", "GET", 404, 5*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Failed to gather: %v", err)
	}
	if len(families) != 2 {
		t.Fatalf("Expected 2 metric families, got %d", len(families))
	}
	count, err := testutil.GatherAndCount(reg, "recipes_requests_total")
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 request series, got %d", count)
	}
}
