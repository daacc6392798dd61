package executor

import "time"

// Result is the outcome of one operation, serialized as a single JSON
// object on the output stream. Timestamps are Unix nanoseconds so
// callers in any language can compute durations without parsing dates.
type Result struct {
	Success        bool     `json:"success"`
	Operation      string   `json:"operation"`
	Message        string   `json:"message"`
	ErrorMessage   string   `json:"error_message,omitempty"`
	FilesScanned   int      `json:"files_scanned"`
	FilesMatched   int      `json:"files_matched"`
	FilesAffected  int      `json:"files_affected"`
	BytesProcessed int64    `json:"bytes_processed"`
	Errors         []string `json:"errors,omitempty"`
	StartTime      int64    `json:"start_time"`
	EndTime        int64    `json:"end_time"`
}

// Duration returns the wall-clock time the operation took.
func (r Result) Duration() time.Duration {
	return time.Duration(r.EndTime - r.StartTime)
}
