package core

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetricsRecordContainerActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	registry := NewRegistry(nil, WithRegistryMetrics(m))
	src := newLive(t, ContainerConfig{TypeID: "crate", SlotCount: 1}, WithMetrics(m), WithRegistry(registry))
	dst := newLive(t, ContainerConfig{TypeID: "crate", SlotCount: 1}, WithMetrics(m), WithRegistry(registry))

	src.Add(newIdentified("apple"))
	src.Add(newIdentified("apple"))
	if !src.TransferTo(dst) {
		t.Fatalf("transfer failed")
	}
	src.TransferTo(dst)

	if got := testutil.ToFloat64(m.Adds().WithLabelValues("crate", OutcomeAccepted)); got != 2 {
		t.Fatalf("accepted adds = %v", got)
	}
	if got := testutil.ToFloat64(m.Adds().WithLabelValues("crate", OutcomeCapacity)); got != 1 {
		t.Fatalf("capacity adds = %v", got)
	}
	if got := testutil.ToFloat64(m.Transfers().WithLabelValues(OutcomeTransferred)); got != 1 {
		t.Fatalf("transfers = %v", got)
	}
	if got := testutil.ToFloat64(m.Transfers().WithLabelValues(OutcomeRemoveFailed)); got != 1 {
		t.Fatalf("remove failures = %v", got)
	}
	if got := testutil.ToFloat64(m.Roots()); got != 2 {
		t.Fatalf("roots gauge = %v", got)
	}
	if _, err := NewPrometheusMetrics(reg); err == nil {
		t.Fatalf("registering twice should fail")
	}
}
