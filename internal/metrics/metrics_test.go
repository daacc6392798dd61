package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestMetricsInit verifies that Init() is idempotent and registers metrics
func TestMetricsInit(t *testing.T) {
	// Call Init multiple times - should be idempotent via sync.Once
	Init()
	Init()
	Init()

	// Verify metrics are non-nil (successfully created)
	if OperationsTotal == nil {
		t.Error("OperationsTotal should be initialized")
	}
	if OperationDuration == nil {
		t.Error("OperationDuration should be initialized")
	}
	if FilesAffectedTotal == nil {
		t.Error("FilesAffectedTotal should be initialized")
	}
	if BytesProcessedTotal == nil {
		t.Error("BytesProcessedTotal should be initialized")
	}
	if FileErrorsTotal == nil {
		t.Error("FileErrorsTotal should be initialized")
	}
	if ErrorsTotal == nil {
		t.Error("ErrorsTotal should be initialized")
	}
	if LastOperationTimestamp == nil {
		t.Error("LastOperationTimestamp should be initialized")
	}
	if FreeSpacePercent == nil {
		t.Error("FreeSpacePercent should be initialized")
	}
	if HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration should be initialized")
	}
	if HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal should be initialized")
	}

	// Test metrics are registered by gathering from default registry
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	expectedMetrics := []string{
		"smartfile_operations_total",
		"smartfile_operation_duration_seconds",
		"smartfile_errors_total",
		"smartfile_last_operation_timestamp",
		"smartfile_api_request_duration_seconds",
		"smartfile_api_requests_total",
	}

	foundMetrics := make(map[string]bool)
	for _, mf := range mfs {
		foundMetrics[*mf.Name] = true
	}

	for _, expected := range expectedMetrics {
		if !foundMetrics[expected] {
			t.Errorf("Expected metric %s not found in registry", expected)
		}
	}
}

// TestHelperFunctions verifies that helper functions create valid metrics
func TestHelperFunctions(t *testing.T) {
	t.Run("NewDurationHistogram", func(t *testing.T) {
		h := NewDurationHistogram("test_duration", "Test duration metric")
		if h == nil {
			t.Error("NewDurationHistogram returned nil")
		}
	})

	t.Run("NewBytesCounter", func(t *testing.T) {
		c := NewBytesCounter("test_bytes", "Test bytes metric")
		if c == nil {
			t.Error("NewBytesCounter returned nil")
		}
	})

	t.Run("NewCounter", func(t *testing.T) {
		c := NewCounter("test_counter", "Test counter metric")
		if c == nil {
			t.Error("NewCounter returned nil")
		}
	})

	t.Run("NewSizeGauge", func(t *testing.T) {
		g := NewSizeGauge("test_gauge", "Test gauge metric")
		if g == nil {
			t.Error("NewSizeGauge returned nil")
		}
	})

	t.Run("NewCounterVec", func(t *testing.T) {
		cv := NewCounterVec("test_counter_vec", "Test counter vec metric", []string{"label"})
		if cv == nil {
			t.Error("NewCounterVec returned nil")
		}
	})

	t.Run("NewGaugeVec", func(t *testing.T) {
		gv := NewGaugeVec("test_gauge_vec", "Test gauge vec metric", []string{"label"})
		if gv == nil {
			t.Error("NewGaugeVec returned nil")
		}
	})
}

// TestStandardBuckets verifies that standard bucket definitions are correct
func TestStandardBuckets(t *testing.T) {
	t.Run("DurationBuckets", func(t *testing.T) {
		expected := []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300}
		if len(DurationBuckets) != len(expected) {
			t.Errorf("Expected %d duration buckets, got %d", len(expected), len(DurationBuckets))
		}
		for i, v := range expected {
			if DurationBuckets[i] != v {
				t.Errorf("Duration bucket[%d]: expected %v, got %v", i, v, DurationBuckets[i])
			}
		}
	})

	t.Run("APIBuckets", func(t *testing.T) {
		expected := []float64{0.1, 0.5, 1, 5, 10}
		if len(APIBuckets) != len(expected) {
			t.Errorf("Expected %d API buckets, got %d", len(expected), len(APIBuckets))
		}
		for i, v := range expected {
			if APIBuckets[i] != v {
				t.Errorf("API bucket[%d]: expected %v, got %v", i, v, APIBuckets[i])
			}
		}
	})
}

// TestRecordOperation verifies the recording helper handles every outcome
func TestRecordOperation(t *testing.T) {
	Init()

	t.Run("Success", func(t *testing.T) {
		RecordOperation("move", true, false, 3, 4096, 0, 250*time.Millisecond)
	})

	t.Run("DryRun", func(t *testing.T) {
		RecordOperation("delete", true, true, 10, 0, 0, 10*time.Millisecond)
	})

	t.Run("Failure", func(t *testing.T) {
		RecordOperation("copy", false, false, 0, 0, 0, time.Millisecond)
	})

	t.Run("PartialFailure", func(t *testing.T) {
		RecordOperation("move", true, false, 2, 2048, 1, 100*time.Millisecond)
	})
}

// TestMetricIncrements verifies metrics can be incremented/updated
func TestMetricIncrements(t *testing.T) {
	Init()

	t.Run("IncrementCounters", func(t *testing.T) {
		ErrorsTotal.Inc()
		FilesAffectedTotal.WithLabelValues("move").Add(3)
		BytesProcessedTotal.WithLabelValues("copy").Add(1024)
	})

	t.Run("ObserveHistogram", func(t *testing.T) {
		OperationDuration.Observe(1.5)
		OperationDuration.Observe(30.2)
	})

	t.Run("SetGauges", func(t *testing.T) {
		LastOperationTimestamp.Set(1234567890)
		UpdateFreeSpacePercent("/data", 85.5)
	})

	t.Run("LabeledMetrics", func(t *testing.T) {
		HTTPRequestDuration.WithLabelValues("/api/health", "GET", "200").Observe(0.05)
		HTTPRequestsTotal.WithLabelValues("/api/health", "GET", "200").Inc()
	})
}
