package executor

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"smartfile/internal/command"
	"smartfile/internal/database"
	"smartfile/internal/fsops"
	"smartfile/internal/metrics"
	"smartfile/internal/pathutil"
	"smartfile/internal/pattern"
	"smartfile/internal/safety"
	"smartfile/internal/scan"
)

// OperationLogger interface for structured logging in the executor
type OperationLogger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement OperationLogger
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Executor runs validated file operations. All filesystem mutations go
// through the FileOps interface so dry-run guarantees are provable in
// tests, and every completed operation is journaled to the history
// database when one is attached.
type Executor struct {
	gate    *safety.Gate
	scanner *scan.Scanner
	fs      fsops.FileOps
	logger  OperationLogger
	verbose io.Writer // per-file progress when a command sets verbose
	history *database.HistoryDB
}

// New creates an Executor with real filesystem operations.
func New(gate *safety.Gate, logger *log.Logger) *Executor {
	opLogger := &stdLogger{Logger: logger}
	if logger == nil {
		opLogger.Logger = log.Default()
	}
	return &Executor{
		gate:    gate,
		scanner: scan.NewScanner(logger),
		fs:      fsops.OSFileOps{},
		logger:  opLogger,
	}
}

// SetFileOps swaps the filesystem backend. Tests install a FakeFileOps
// here to prove dry-run and failure isolation without touching disk.
func (e *Executor) SetFileOps(fs fsops.FileOps) {
	e.fs = fs
}

// SetScanner replaces the directory scanner, e.g. to attach a throttled one.
func (e *Executor) SetScanner(s *scan.Scanner) {
	e.scanner = s
}

// SetHistory attaches the operation journal. A failed journal write is
// logged but never fails the operation itself.
func (e *Executor) SetHistory(db *database.HistoryDB) {
	e.history = db
}

// SetVerboseWriter sets the destination for per-file progress lines.
func (e *Executor) SetVerboseWriter(w io.Writer) {
	e.verbose = w
}

// Execute runs one command and returns its result. Operation-level
// problems (validation, unsafe paths, unknown actions) fail the result;
// per-file problems are collected in Errors and leave Success true.
func (e *Executor) Execute(cmd command.Command) Result {
	start := time.Now()

	if e.verbose != nil && cmd.Verbose {
		fmt.Fprintf(e.verbose, "Executing command: %s\n", cmd.String())
	}

	var res Result
	if err := cmd.Validate(); err != nil {
		res = Result{Operation: cmd.Action, ErrorMessage: err.Error()}
	} else {
		switch cmd.Action {
		case command.ActionMove:
			res = e.transferFiles(cmd, false)
		case command.ActionCopy:
			res = e.transferFiles(cmd, true)
		case command.ActionDelete:
			res = e.deleteFiles(cmd)
		case command.ActionCreateFolder:
			res = e.createFolder(cmd)
		default:
			res = Result{Operation: cmd.Action, ErrorMessage: "Unknown action: " + cmd.Action}
		}
	}

	res.StartTime = start.UnixNano()
	res.EndTime = time.Now().UnixNano()

	e.finish(cmd, res)
	return res
}

// transferFiles implements move and copy, which differ only in the verb
// and the filesystem call.
func (e *Executor) transferFiles(cmd command.Command, isCopy bool) Result {
	verb, verbed, gerund := "move", "moved", "Moving"
	if isCopy {
		verb, verbed, gerund = "copy", "copied", "Copying"
	}
	res := Result{Operation: cmd.Action}

	sourcePath := pathutil.ExpandPath(cmd.Source)
	destPath := pathutil.ExpandPath(cmd.Destination)

	if !e.gate.IsSafe(sourcePath) {
		res.ErrorMessage = "Source directory is not safe to operate on"
		return res
	}
	if !e.gate.IsSafe(destPath) {
		res.ErrorMessage = "Destination directory is not safe to operate on"
		return res
	}

	files, matching := e.scanAndMatch(cmd, sourcePath)
	res.FilesScanned = len(files)
	res.FilesMatched = len(matching)

	if cmd.DryRun {
		res.Message = fmt.Sprintf("Would %s %d files", verb, len(matching))
		res.Success = true
		return res
	}

	affected := 0
	for _, file := range matching {
		destFile := filepath.Join(destPath, filepath.Base(file.Path))

		if e.verbose != nil && cmd.Verbose {
			fmt.Fprintf(e.verbose, "%s: %s -> %s\n", gerund, file.Path, destFile)
		}

		var err error
		if isCopy {
			err = e.fs.CopyFile(file.Path, destFile)
		} else {
			err = e.fs.Rename(file.Path, destFile)
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to %s %s: %v", verb, file.Path, err))
			continue
		}
		affected++
		res.BytesProcessed += file.Size
	}

	res.FilesAffected = affected
	res.Message = fmt.Sprintf("Successfully %s %d files", verbed, affected)
	res.Success = true
	return res
}

func (e *Executor) deleteFiles(cmd command.Command) Result {
	res := Result{Operation: cmd.Action}

	sourcePath := pathutil.ExpandPath(cmd.Source)

	if !e.gate.IsSafe(sourcePath) {
		res.ErrorMessage = "Source directory is not safe to operate on"
		return res
	}

	files, matching := e.scanAndMatch(cmd, sourcePath)
	res.FilesScanned = len(files)
	res.FilesMatched = len(matching)

	if cmd.DryRun {
		res.Message = fmt.Sprintf("Would delete %d files", len(matching))
		res.Success = true
		return res
	}

	affected := 0
	for _, file := range matching {
		if e.verbose != nil && cmd.Verbose {
			fmt.Fprintf(e.verbose, "Deleting: %s\n", file.Path)
		}

		if err := e.fs.Remove(file.Path); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to delete %s: %v", file.Path, err))
			continue
		}
		affected++
		res.BytesProcessed += file.Size
	}

	res.FilesAffected = affected
	res.Message = fmt.Sprintf("Successfully deleted %d files", affected)
	res.Success = true
	return res
}

func (e *Executor) createFolder(cmd command.Command) Result {
	res := Result{Operation: cmd.Action}

	folderPath := pathutil.ExpandPath(cmd.Destination)

	if !e.gate.IsSafe(filepath.Dir(folderPath)) {
		res.ErrorMessage = "Parent directory is not safe to operate on"
		return res
	}

	if cmd.DryRun {
		res.Message = "Would create folder: " + folderPath
		res.Success = true
		return res
	}

	if e.verbose != nil && cmd.Verbose {
		fmt.Fprintf(e.verbose, "Creating folder: %s\n", folderPath)
	}

	if err := e.fs.MkdirAll(folderPath); err != nil {
		res.ErrorMessage = fmt.Sprintf("Create folder operation failed: %v", err)
		return res
	}

	// Idempotent: an existing folder still counts as one affected entry
	res.FilesAffected = 1
	res.Message = "Successfully created folder: " + folderPath
	res.Success = true
	return res
}

// scanAndMatch lists the source directory and filters entries whose base
// name satisfies the command's pattern.
func (e *Executor) scanAndMatch(cmd command.Command, sourcePath string) (files, matching []scan.Entry) {
	if cmd.Recursive {
		files = e.scanner.ScanRecursive(sourcePath)
	} else {
		files = e.scanner.Scan(sourcePath)
	}

	for _, f := range files {
		if pattern.Matches(filepath.Base(f.Path), cmd.Pattern) {
			matching = append(matching, f)
		}
	}
	return files, matching
}

// finish journals the result, updates metrics, and logs the outcome.
func (e *Executor) finish(cmd command.Command, res Result) {
	if res.Success {
		e.logger.Info("Operation complete",
			"action", cmd.Action,
			"scanned", res.FilesScanned,
			"matched", res.FilesMatched,
			"affected", res.FilesAffected,
			"file_errors", len(res.Errors),
			"dry_run", cmd.DryRun,
		)
	} else {
		e.logger.Error("Operation failed",
			"action", cmd.Action,
			"error", res.ErrorMessage,
		)
	}

	if e.verbose != nil && cmd.Verbose {
		outcome := "SUCCESS"
		if !res.Success {
			outcome = "FAILED"
		}
		fmt.Fprintf(e.verbose, "Operation completed: %s\n", outcome)
		if !res.Success && res.ErrorMessage != "" {
			fmt.Fprintf(e.verbose, "Error: %s\n", res.ErrorMessage)
		}
	}

	metrics.RecordOperation(cmd.Action, res.Success, cmd.DryRun,
		res.FilesAffected, res.BytesProcessed, len(res.Errors), res.Duration())

	if e.history != nil {
		rec := database.OperationRecord{
			Timestamp:      time.Unix(0, res.StartTime),
			Action:         cmd.Action,
			Pattern:        cmd.Pattern,
			Source:         cmd.Source,
			Destination:    cmd.Destination,
			DryRun:         cmd.DryRun,
			Recursive:      cmd.Recursive,
			Success:        res.Success,
			FilesScanned:   res.FilesScanned,
			FilesMatched:   res.FilesMatched,
			FilesAffected:  res.FilesAffected,
			BytesProcessed: res.BytesProcessed,
			DurationMS:     res.Duration().Milliseconds(),
			Message:        res.Message,
			ErrorMessage:   res.ErrorMessage,
		}
		if err := e.history.RecordOperation(rec); err != nil {
			e.logger.Error("Failed to record operation to database", "error", err)
			metrics.ErrorsTotal.Inc()
		}
	}
}
