package metrics

import (
	"testing"
	"time"
)

func TestMetricsHandler(t *testing.T) {
	handler, err := New("metrics_handler_test")
	if err != nil {
		t.Fatalf("Failed to create metrics handler: %v", err)
	}

	// Named vecs
	handler.IncOptionsValidationsTotal("ok")
	handler.IncOptionsValidationsTotal("fail")
	handler.IncOptionsValidationFailures("sample_count", "value")
	handler.IncOptionsReplacementsTotal("accepted", "http")
	handler.IncHTTPRequestsTotal("/v1/options", "GET", "200")
	handler.ObserveHTTPRequestLatency("/v1/options", 10*time.Millisecond)
	handler.IncGRPCRequestsTotal("/grpc.health.v1.Health/Check", "success")
	handler.ObserveGRPCRequestLatency("/grpc.health.v1.Health/Check", 5*time.Millisecond)

	// Generic wrappers
	counter := handler.NewCounter("test_pushes_total", "Test pushes", "endpoint")
	counter.Inc("http://localhost:9000")
	counter.Add(3, "http://localhost:9000")

	histogram := handler.NewHistogram("test_latency_seconds", "Test latency", "endpoint")
	histogram.Observe(0.25, "http://localhost:9000")

	gauge := handler.NewGauge("test_queue_size", "Test queue size")
	gauge.Set(10)
	gauge.Inc()
	gauge.Dec()

	// If we get here without panicking, the metrics are working
	t.Log("All metrics operations completed successfully")
}
