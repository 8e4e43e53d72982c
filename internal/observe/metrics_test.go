package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// TestMetrics_TotalCounterIncrements verifies message.process.total is incremented.
func TestMetrics_TotalCounterIncrements(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	m, err := newMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := MessageMeta{
		Namespace: "test",
		Name:      "my_message",
	}

	m.RecordExecution(context.Background(), meta, 100*time.Millisecond, nil)

	// Collect and verify metrics
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "message.process.total")
	if found == nil {
		t.Fatal("message.process.total metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if sum.DataPoints[0].Value != 1 {
		t.Errorf("expected count 1, got %d", sum.DataPoints[0].Value)
	}
}

// TestMetrics_ErrorCounterOnSuccess verifies errors counter NOT incremented on success.
func TestMetrics_ErrorCounterOnSuccess(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	m, err := newMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := MessageMeta{Name: "success_message"}
	m.RecordExecution(context.Background(), meta, 50*time.Millisecond, nil)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "message.process.errors")
	if found == nil {
		// If metric doesn't exist at all (no errors recorded), that's acceptable
		return
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		return // Different type, skip
	}
	if len(sum.DataPoints) > 0 && sum.DataPoints[0].Value != 0 {
		t.Errorf("expected errors count 0, got %d", sum.DataPoints[0].Value)
	}
}

// TestMetrics_ErrorCounterOnFailure verifies errors counter incremented on failure.
func TestMetrics_ErrorCounterOnFailure(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	m, err := newMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := MessageMeta{Name: "failing_message"}
	testErr := errors.New("execution failed")
	m.RecordExecution(context.Background(), meta, 50*time.Millisecond, testErr)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "message.process.errors")
	if found == nil {
		t.Fatal("message.process.errors metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if sum.DataPoints[0].Value != 1 {
		t.Errorf("expected errors count 1, got %d", sum.DataPoints[0].Value)
	}
}

// TestMetrics_DurationHistogramRecords verifies duration is recorded.
func TestMetrics_DurationHistogramRecords(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	m, err := newMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := MessageMeta{Name: "timed_message"}
	duration := 50 * time.Millisecond
	m.RecordExecution(context.Background(), meta, duration, nil)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "message.process.duration_ms")
	if found == nil {
		t.Fatal("message.process.duration_ms metric not found")
	}

	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("no data points")
	}

	// Verify sum is approximately 50ms
	dp := hist.DataPoints[0]
	if dp.Sum < 40 || dp.Sum > 60 {
		t.Errorf("expected duration ~50ms, got %f", dp.Sum)
	}
}

// TestMetrics_LabelsApplied verifies labels include message metadata.
func TestMetrics_LabelsApplied(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	m, err := newMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := MessageMeta{
		Namespace: "acmebank",
		Name:      "pacs.008",
	}
	m.RecordExecution(context.Background(), meta, 10*time.Millisecond, nil)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "message.process.total")
	if found == nil {
		t.Fatal("message.process.total metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points")
	}

	// Verify attributes
	attrs := sum.DataPoints[0].Attributes
	var foundID, foundNS, foundName bool
	for iter := attrs.Iter(); iter.Next(); {
		kv := iter.Attribute()
		switch string(kv.Key) {
		case "message.id":
			foundID = true
			if kv.Value.AsString() != "acmebank.pacs.008" {
				t.Errorf("expected message.id='acmebank.pacs.008', got %q", kv.Value.AsString())
			}
		case "message.tenant":
			foundNS = true
			if kv.Value.AsString() != "acmebank" {
				t.Errorf("expected message.tenant='acmebank', got %q", kv.Value.AsString())
			}
		case "message.type":
			foundName = true
			if kv.Value.AsString() != "pacs.008" {
				t.Errorf("expected message.type='pacs.008', got %q", kv.Value.AsString())
			}
		}
	}

	if !foundID {
		t.Error("message.id attribute not found")
	}
	if !foundNS {
		t.Error("message.tenant attribute not found")
	}
	if !foundName {
		t.Error("message.type attribute not found")
	}
}

// TestMetrics_ConcurrentRecording verifies thread safety.
func TestMetrics_ConcurrentRecording(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	m, err := newMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := MessageMeta{Name: "concurrent_message"}
	const numGoroutines = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			m.RecordExecution(context.Background(), meta, time.Millisecond, nil)
		}()
	}

	wg.Wait()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "message.process.total")
	if found == nil {
		t.Fatal("message.process.total metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if sum.DataPoints[0].Value != numGoroutines {
		t.Errorf("expected count %d, got %d", numGoroutines, sum.DataPoints[0].Value)
	}
}

// findMetric searches for a metric by name in ResourceMetrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// Silence unused import warning
var _ = attribute.String
