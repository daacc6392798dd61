package scan

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"smartfile/internal/limiter"
)

// Logger interface for structured logging
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement Logger interface
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Warn(msg string, args ...interface{}) {
	l.logWithLevel("WARN", msg, args...)
}

func (l *stdLogger) Debug(msg string, args ...interface{}) {
	l.logWithLevel("DEBUG", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Entry is a regular file found during a scan.
type Entry struct {
	Path string
	Size int64
}

// Scanner lists regular files in a source directory. Traversal problems
// (permission errors, entries vanishing mid-walk) are logged and skipped,
// never fatal: an unreadable subtree yields fewer entries, not a failed
// operation.
type Scanner struct {
	logger    Logger
	throttler *limiter.CPULimiter
}

// NewScanner creates a new Scanner with the given logger
func NewScanner(logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{
		logger: &stdLogger{Logger: logger},
	}
}

// SetThrottler installs a CPU limiter invoked once per visited entry
// during recursive walks. Nil disables throttling.
func (s *Scanner) SetThrottler(t *limiter.CPULimiter) {
	s.throttler = t
}

// Scan lists the regular files directly inside dir. Subdirectories are not
// descended into and directory entries themselves are never returned. A
// missing or unreadable dir yields an empty result.
func (s *Scanner) Scan(dir string) []Entry {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn("Failed to read directory", "path", dir, "error", err)
		return nil
	}

	var files []Entry
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			s.logger.Debug("Skipping unreadable entry", "path", filepath.Join(dir, e.Name()), "error", err)
			continue
		}
		files = append(files, Entry{
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files
}

// ScanRecursive walks the whole tree rooted at dir and lists every regular
// file at any depth.
func (s *Scanner) ScanRecursive(dir string) []Entry {
	var files []Entry
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("Skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if s.throttler != nil {
			s.throttler.Throttle()
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.logger.Debug("Skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		files = append(files, Entry{Path: path, Size: info.Size()})
		return nil
	})
	return files
}
