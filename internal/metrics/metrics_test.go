package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/morezero/action-gateway/pkg/events"
)

func TestCollector_CountsByProtocolAndOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	ctx := context.Background()
	c.PublishDispatch(ctx, &events.DispatchEvent{Protocol: "api", Status: 200, Duration: 5 * time.Millisecond})
	c.PublishDispatch(ctx, &events.DispatchEvent{Protocol: "api", Status: 200, Duration: 3 * time.Millisecond})
	c.PublishDispatch(ctx, &events.DispatchEvent{Protocol: "server", Status: 404, ErrorCode: "system:no-registry"})

	success := testutil.ToFloat64(c.dispatches.WithLabelValues("api", "success"))
	if success != 2 {
		t.Errorf("expected 2 api successes, got %v", success)
	}
	notFound := testutil.ToFloat64(c.dispatches.WithLabelValues("server", "system:no-registry"))
	if notFound != 1 {
		t.Errorf("expected 1 server no-registry, got %v", notFound)
	}
}

func TestCollector_RegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.PublishDispatch(context.Background(), &events.DispatchEvent{Protocol: "api", Status: 200})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	if !names["gateway_dispatches_total"] {
		t.Error("expected gateway_dispatches_total registered")
	}
	if !names["gateway_dispatch_duration_seconds"] {
		t.Error("expected gateway_dispatch_duration_seconds registered")
	}
}
