package executor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"smartfile/internal/command"
	"smartfile/internal/fsops"
	"smartfile/internal/metrics"
	"smartfile/internal/safety"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

func newTestExecutor() *Executor {
	return New(safety.NewGate(nil, 0), nil)
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("content of "+name), 0644); err != nil {
			t.Fatalf("Failed to create test file %s: %v", name, err)
		}
	}
}

// TestDryRunNeverTouchesFilesystem proves the dry-run guarantee: with a
// fake backend installed, no mutation call is ever recorded.
func TestDryRunNeverTouchesFilesystem(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFiles(t, src, "a.txt", "b.txt", "c.jpg")

	commands := []command.Command{
		{Action: command.ActionMove, Pattern: "*.txt", Source: src, Destination: dst, DryRun: true},
		{Action: command.ActionCopy, Pattern: "*.txt", Source: src, Destination: dst, DryRun: true},
		{Action: command.ActionDelete, Pattern: "*.txt", Source: src, DryRun: true},
		{Action: command.ActionCreateFolder, Destination: filepath.Join(dst, "new"), DryRun: true},
	}

	for _, cmd := range commands {
		t.Run(cmd.Action, func(t *testing.T) {
			fake := &fsops.FakeFileOps{}
			exec := newTestExecutor()
			exec.SetFileOps(fake)

			res := exec.Execute(cmd)

			if !res.Success {
				t.Fatalf("dry run failed: %s", res.ErrorMessage)
			}
			if len(fake.Calls) != 0 {
				t.Errorf("dry run performed %d filesystem calls: %v", len(fake.Calls), fake.Calls)
			}
			if res.FilesAffected != 0 {
				t.Errorf("dry run reported %d files affected", res.FilesAffected)
			}
			if !strings.HasPrefix(res.Message, "Would ") {
				t.Errorf("dry run message = %q", res.Message)
			}
		})
	}
}

// TestDryRunCountsMatches verifies dry runs still scan and match
func TestDryRunCountsMatches(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "a.txt", "b.jpg", "c.txt")

	exec := newTestExecutor()
	exec.SetFileOps(&fsops.FakeFileOps{})

	res := exec.Execute(command.Command{
		Action:  command.ActionDelete,
		Pattern: ".txt",
		Source:  src,
		DryRun:  true,
	})

	if !res.Success {
		t.Fatalf("Execute failed: %s", res.ErrorMessage)
	}
	if res.FilesScanned != 3 {
		t.Errorf("FilesScanned = %d, expected 3", res.FilesScanned)
	}
	if res.FilesMatched != 2 {
		t.Errorf("FilesMatched = %d, expected 2", res.FilesMatched)
	}
	if res.FilesAffected != 0 {
		t.Errorf("FilesAffected = %d, expected 0", res.FilesAffected)
	}
	if res.Message != "Would delete 2 files" {
		t.Errorf("Message = %q", res.Message)
	}

	// Source files untouched
	entries, _ := os.ReadDir(src)
	if len(entries) != 3 {
		t.Errorf("source directory changed during dry run: %d entries", len(entries))
	}
}

// TestPartialFailureIsolation verifies one bad file never aborts the rest:
// the operation stays successful, the failure lands in Errors.
func TestPartialFailureIsolation(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "a.txt", "b.txt", "c.txt")

	fake := &fsops.FakeFileOps{
		FailPaths: map[string]error{
			filepath.Join(src, "b.txt"): errors.New("permission denied"),
		},
	}
	exec := newTestExecutor()
	exec.SetFileOps(fake)

	res := exec.Execute(command.Command{
		Action:      command.ActionMove,
		Pattern:     "*.txt",
		Source:      src,
		Destination: t.TempDir(),
	})

	if !res.Success {
		t.Fatalf("operation should succeed despite per-file failure: %s", res.ErrorMessage)
	}
	if res.FilesAffected != 2 {
		t.Errorf("FilesAffected = %d, expected 2", res.FilesAffected)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("Errors = %v, expected exactly 1", res.Errors)
	}
	want := "Failed to move " + filepath.Join(src, "b.txt") + ": permission denied"
	if res.Errors[0] != want {
		t.Errorf("error = %q, expected %q", res.Errors[0], want)
	}
	if res.Message != "Successfully moved 2 files" {
		t.Errorf("Message = %q", res.Message)
	}
}

// TestMoveFiles exercises move end to end on the real filesystem
func TestMoveFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFiles(t, src, "report.txt", "image.png")

	exec := newTestExecutor()
	res := exec.Execute(command.Command{
		Action:      command.ActionMove,
		Pattern:     "*.txt",
		Source:      src,
		Destination: dst,
	})

	if !res.Success {
		t.Fatalf("move failed: %s", res.ErrorMessage)
	}
	if res.FilesAffected != 1 {
		t.Errorf("FilesAffected = %d, expected 1", res.FilesAffected)
	}
	if res.BytesProcessed == 0 {
		t.Error("BytesProcessed should reflect the moved file size")
	}
	if _, err := os.Stat(filepath.Join(dst, "report.txt")); err != nil {
		t.Errorf("moved file not at destination: %v", err)
	}
	if _, err := os.Stat(filepath.Join(src, "report.txt")); !os.IsNotExist(err) {
		t.Error("moved file still present at source")
	}
	if _, err := os.Stat(filepath.Join(src, "image.png")); err != nil {
		t.Errorf("unmatched file disturbed: %v", err)
	}
}

// TestCopyFilesOverwrites verifies copy semantics including overwrite
func TestCopyFilesOverwrites(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFiles(t, src, "data.txt")

	// Pre-existing destination file with different content
	if err := os.WriteFile(filepath.Join(dst, "data.txt"), []byte("stale"), 0644); err != nil {
		t.Fatalf("Failed to seed destination: %v", err)
	}

	exec := newTestExecutor()
	res := exec.Execute(command.Command{
		Action:      command.ActionCopy,
		Pattern:     "*.txt",
		Source:      src,
		Destination: dst,
	})

	if !res.Success || res.FilesAffected != 1 {
		t.Fatalf("copy failed: success=%v affected=%d error=%s", res.Success, res.FilesAffected, res.ErrorMessage)
	}

	got, err := os.ReadFile(filepath.Join(dst, "data.txt"))
	if err != nil {
		t.Fatalf("Failed to read copied file: %v", err)
	}
	if string(got) != "content of data.txt" {
		t.Errorf("destination not overwritten: %q", got)
	}

	// Source retained
	if _, err := os.Stat(filepath.Join(src, "data.txt")); err != nil {
		t.Errorf("copy removed the source: %v", err)
	}
}

// TestDeleteFiles exercises delete end to end
func TestDeleteFiles(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "a.txt", "b.jpg", "c.txt")

	exec := newTestExecutor()
	res := exec.Execute(command.Command{
		Action:  command.ActionDelete,
		Pattern: ".txt",
		Source:  src,
	})

	if !res.Success {
		t.Fatalf("delete failed: %s", res.ErrorMessage)
	}
	if res.FilesScanned != 3 || res.FilesMatched != 2 || res.FilesAffected != 2 {
		t.Errorf("counts = %d/%d/%d, expected 3/2/2",
			res.FilesScanned, res.FilesMatched, res.FilesAffected)
	}
	if res.Message != "Successfully deleted 2 files" {
		t.Errorf("Message = %q", res.Message)
	}

	entries, _ := os.ReadDir(src)
	if len(entries) != 1 || entries[0].Name() != "b.jpg" {
		t.Errorf("unexpected survivors: %v", entries)
	}
}

// TestRecursiveScanning verifies the recursive flag reaches nested files
func TestRecursiveScanning(t *testing.T) {
	src := t.TempDir()
	nested := filepath.Join(src, "sub")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("Failed to create nested dir: %v", err)
	}
	writeFiles(t, src, "top.log")
	writeFiles(t, nested, "deep.log")

	exec := newTestExecutor()

	flat := exec.Execute(command.Command{
		Action: command.ActionDelete, Pattern: "*.log", Source: src, DryRun: true,
	})
	if flat.FilesMatched != 1 {
		t.Errorf("flat scan matched %d, expected 1", flat.FilesMatched)
	}

	recursive := exec.Execute(command.Command{
		Action: command.ActionDelete, Pattern: "*.log", Source: src, DryRun: true, Recursive: true,
	})
	if recursive.FilesMatched != 2 {
		t.Errorf("recursive scan matched %d, expected 2", recursive.FilesMatched)
	}
}

// TestCreateFolderIdempotent verifies repeat creation still succeeds
func TestCreateFolderIdempotent(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "new", "nested", "folder")

	exec := newTestExecutor()
	cmd := command.Command{Action: command.ActionCreateFolder, Destination: target}

	for i := 0; i < 2; i++ {
		res := exec.Execute(cmd)
		if !res.Success {
			t.Fatalf("create_folder run %d failed: %s", i+1, res.ErrorMessage)
		}
		if res.FilesAffected != 1 {
			t.Errorf("run %d: FilesAffected = %d, expected 1", i+1, res.FilesAffected)
		}
		if res.Message != "Successfully created folder: "+target {
			t.Errorf("run %d: Message = %q", i+1, res.Message)
		}
	}

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		t.Errorf("folder not created: %v", err)
	}
}

// TestUnknownAction verifies the structured rejection
func TestUnknownAction(t *testing.T) {
	exec := newTestExecutor()
	res := exec.Execute(command.Command{Action: "archive", Source: "/tmp/in"})

	if res.Success {
		t.Fatal("unknown action should fail")
	}
	if res.ErrorMessage != "Unknown action: archive" {
		t.Errorf("ErrorMessage = %q", res.ErrorMessage)
	}
}

// TestValidationFailures verifies missing required fields fail the result
func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		cmd  command.Command
	}{
		{"move without destination", command.Command{Action: command.ActionMove, Source: "/tmp/in"}},
		{"copy without source", command.Command{Action: command.ActionCopy, Destination: "/tmp/out"}},
		{"delete without source", command.Command{Action: command.ActionDelete}},
		{"create_folder without destination", command.Command{Action: command.ActionCreateFolder}},
	}

	exec := newTestExecutor()
	fake := &fsops.FakeFileOps{}
	exec.SetFileOps(fake)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := exec.Execute(tt.cmd)
			if res.Success {
				t.Error("invalid command should fail")
			}
			if res.ErrorMessage == "" {
				t.Error("expected a validation error message")
			}
		})
	}

	if len(fake.Calls) != 0 {
		t.Errorf("invalid commands reached the filesystem: %v", fake.Calls)
	}
}

// TestUnsafePathsRejected verifies the safety gate blocks system paths
func TestUnsafePathsRejected(t *testing.T) {
	exec := newTestExecutor()
	fake := &fsops.FakeFileOps{}
	exec.SetFileOps(fake)

	tests := []struct {
		name    string
		cmd     command.Command
		wantErr string
	}{
		{
			"unsafe source",
			command.Command{Action: command.ActionDelete, Pattern: "*", Source: "/etc"},
			"Source directory is not safe to operate on",
		},
		{
			"unsafe destination",
			command.Command{Action: command.ActionMove, Pattern: "*", Source: "/tmp/in", Destination: "/usr/local"},
			"Destination directory is not safe to operate on",
		},
		{
			"unsafe create_folder parent",
			command.Command{Action: command.ActionCreateFolder, Destination: "/etc/newdir"},
			"Parent directory is not safe to operate on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := exec.Execute(tt.cmd)
			if res.Success {
				t.Fatal("unsafe path should fail the operation")
			}
			if res.ErrorMessage != tt.wantErr {
				t.Errorf("ErrorMessage = %q, expected %q", res.ErrorMessage, tt.wantErr)
			}
		})
	}

	if len(fake.Calls) != 0 {
		t.Errorf("unsafe commands reached the filesystem: %v", fake.Calls)
	}
}

// TestMissingSourceDirectory verifies a nonexistent source is an empty
// successful scan, not a failure.
func TestMissingSourceDirectory(t *testing.T) {
	exec := newTestExecutor()
	res := exec.Execute(command.Command{
		Action:  command.ActionDelete,
		Pattern: "*",
		Source:  filepath.Join(t.TempDir(), "missing"),
	})

	if !res.Success {
		t.Fatalf("missing source should not fail: %s", res.ErrorMessage)
	}
	if res.FilesScanned != 0 || res.FilesMatched != 0 || res.FilesAffected != 0 {
		t.Errorf("counts = %d/%d/%d, expected 0/0/0",
			res.FilesScanned, res.FilesMatched, res.FilesAffected)
	}
}

// TestVerboseNarration verifies per-file progress output
func TestVerboseNarration(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "a.txt")

	var buf bytes.Buffer
	exec := newTestExecutor()
	exec.SetVerboseWriter(&buf)

	res := exec.Execute(command.Command{
		Action:  command.ActionDelete,
		Pattern: "*.txt",
		Source:  src,
		Verbose: true,
	})
	if !res.Success {
		t.Fatalf("delete failed: %s", res.ErrorMessage)
	}

	out := buf.String()
	if !strings.Contains(out, "Executing command: delete") {
		t.Errorf("missing command narration: %q", out)
	}
	if !strings.Contains(out, "Deleting: "+filepath.Join(src, "a.txt")) {
		t.Errorf("missing per-file narration: %q", out)
	}
	if !strings.Contains(out, "Operation completed: SUCCESS") {
		t.Errorf("missing completion narration: %q", out)
	}
}

// TestResultTimestamps verifies timing fields are always populated
func TestResultTimestamps(t *testing.T) {
	exec := newTestExecutor()
	res := exec.Execute(command.Command{
		Action: command.ActionDelete, Pattern: "*", Source: t.TempDir(), DryRun: true,
	})

	if res.StartTime == 0 || res.EndTime == 0 {
		t.Errorf("timestamps missing: start=%d end=%d", res.StartTime, res.EndTime)
	}
	if res.EndTime < res.StartTime {
		t.Errorf("EndTime %d before StartTime %d", res.EndTime, res.StartTime)
	}
	if res.Duration() < 0 {
		t.Errorf("negative duration %v", res.Duration())
	}
}
