package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation subsystem metrics
var (
	// OperationsTotal counts completed operations by action and outcome
	OperationsTotal *prometheus.CounterVec

	// OperationDuration tracks how long operations take end to end
	OperationDuration prometheus.Histogram

	// FilesAffectedTotal counts files actually moved, copied, or deleted
	FilesAffectedTotal *prometheus.CounterVec

	// BytesProcessedTotal counts bytes moved, copied, or deleted
	BytesProcessedTotal *prometheus.CounterVec

	// FileErrorsTotal counts per-file failures inside otherwise
	// successful operations
	FileErrorsTotal *prometheus.CounterVec

	// ErrorsTotal counts internal errors (server faults, DB write
	// failures), not operation-level validation rejections
	ErrorsTotal prometheus.Counter

	// LastOperationTimestamp records Unix timestamp of the last operation
	LastOperationTimestamp prometheus.Gauge

	// FreeSpacePercent tracks free space on filesystems touched by
	// recent operations
	FreeSpacePercent *prometheus.GaugeVec
)

// initOperationMetrics initializes all operation subsystem metrics
func initOperationMetrics() {
	OperationsTotal = NewCounterVec(
		"smartfile_operations_total",
		"Total operations executed, by action and outcome.",
		[]string{"action", "status"},
	)

	OperationDuration = NewDurationHistogram(
		"smartfile_operation_duration_seconds",
		"End-to-end duration of operations in seconds.",
	)

	FilesAffectedTotal = NewCounterVec(
		"smartfile_files_affected_total",
		"Total files affected by completed operations.",
		[]string{"action"},
	)

	BytesProcessedTotal = NewCounterVec(
		"smartfile_bytes_processed_total",
		"Total bytes processed by completed operations.",
		[]string{"action"},
	)

	FileErrorsTotal = NewCounterVec(
		"smartfile_file_errors_total",
		"Per-file failures recorded inside operations.",
		[]string{"action"},
	)

	ErrorsTotal = NewCounter(
		"smartfile_errors_total",
		"Total internal errors encountered by the engine.",
	)

	LastOperationTimestamp = NewSizeGauge(
		"smartfile_last_operation_timestamp",
		"Timestamp of the last executed operation (Unix epoch seconds).",
	)

	FreeSpacePercent = NewSizeGaugeVec(
		"smartfile_free_space_percent",
		"Current free space percentage for recently used paths.",
		[]string{"path"},
	)
}

// registerOperationMetrics registers all operation metrics with Prometheus
func registerOperationMetrics() {
	prometheus.MustRegister(OperationsTotal)
	prometheus.MustRegister(OperationDuration)
	prometheus.MustRegister(FilesAffectedTotal)
	prometheus.MustRegister(BytesProcessedTotal)
	prometheus.MustRegister(FileErrorsTotal)
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(LastOperationTimestamp)
	prometheus.MustRegister(FreeSpacePercent)
}

// RecordOperation updates the operation counters for one completed run.
// Dry runs count under status "dry_run" so real mutations stay separable.
func RecordOperation(action string, success, dryRun bool, filesAffected int, bytesProcessed int64, fileErrors int, duration time.Duration) {
	status := "success"
	switch {
	case !success:
		status = "failure"
	case dryRun:
		status = "dry_run"
	}

	OperationsTotal.WithLabelValues(action, status).Inc()
	OperationDuration.Observe(duration.Seconds())
	LastOperationTimestamp.Set(float64(time.Now().Unix()))

	if dryRun {
		return
	}
	FilesAffectedTotal.WithLabelValues(action).Add(float64(filesAffected))
	BytesProcessedTotal.WithLabelValues(action).Add(float64(bytesProcessed))
	if fileErrors > 0 {
		FileErrorsTotal.WithLabelValues(action).Add(float64(fileErrors))
	}
}

// UpdateFreeSpacePercent updates the free space percentage for a path
func UpdateFreeSpacePercent(path string, percent float64) {
	FreeSpacePercent.WithLabelValues(path).Set(percent)
}
