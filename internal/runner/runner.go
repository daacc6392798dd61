package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"smartfile/internal/command"
	"smartfile/internal/config"
	"smartfile/internal/database"
	"smartfile/internal/disk"
	"smartfile/internal/executor"
	"smartfile/internal/limiter"
	"smartfile/internal/metrics"
	"smartfile/internal/pathutil"
	"smartfile/internal/safety"
	"smartfile/internal/scan"
)

// maxCommandBytes bounds a single JSON command line.
const maxCommandBytes = 1 << 20

// ErrInvalidCommand marks input that failed to decode in single-shot mode,
// so the caller can map it to the invalid-command exit code.
var ErrInvalidCommand = errors.New("invalid command")

// Runner drives the command loop: it reads line-delimited JSON commands,
// applies the confirmation policy, hands each command to the executor,
// and writes one JSON result per line. Confirmation is a front-end
// concern, so it lives here rather than in the executor: callers that
// confirm interactively set force on the command they send.
type Runner struct {
	gate   *safety.Gate
	exec   *executor.Executor
	logger *log.Logger
}

// New builds a Runner from configuration.
func New(cfg *config.Config, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		cfg = config.Default()
	}

	gate := safety.NewGate(cfg.Safety.ExtraSystemDirs, cfg.Safety.ConfirmFileThreshold)
	exec := executor.New(gate, logger)

	if cfg.ResourceLimits.MaxCPUPercent > 0 {
		scanner := scan.NewScanner(logger)
		scanner.SetThrottler(limiter.NewCPULimiter(cfg.ResourceLimits.MaxCPUPercent))
		exec.SetScanner(scanner)
	}

	return &Runner{
		gate:   gate,
		exec:   exec,
		logger: logger,
	}
}

// AttachHistory connects the operation journal.
func (r *Runner) AttachHistory(db *database.HistoryDB) {
	r.exec.SetHistory(db)
}

// SetVerboseWriter forwards per-file narration to w for verbose commands.
func (r *Runner) SetVerboseWriter(w io.Writer) {
	r.exec.SetVerboseWriter(w)
}

// RunOnce applies the confirmation policy and executes a single command.
func (r *Runner) RunOnce(cmd command.Command) executor.Result {
	if r.needsConfirmation(cmd) {
		r.logger.Printf("refusing %s on %s: confirmation required", cmd.Action, cmd.Source)
		return executor.Result{
			Operation:    cmd.Action,
			ErrorMessage: "Operation requires confirmation: re-run with force or dry_run",
		}
	}

	res := r.exec.Execute(cmd)
	r.refreshFreeSpace(cmd)
	return res
}

// needsConfirmation reports whether the command must be refused until the
// caller confirms. Dry runs never mutate, and force records an explicit
// confirmation, so both pass.
func (r *Runner) needsConfirmation(cmd command.Command) bool {
	if cmd.DryRun || cmd.Force {
		return false
	}
	if cmd.Validate() != nil {
		// Let the executor produce the structured validation error
		return false
	}
	switch cmd.Action {
	case command.ActionMove, command.ActionCopy, command.ActionDelete:
		return r.gate.RequiresConfirmation(cmd.Action, pathutil.ExpandPath(cmd.Source))
	}
	return false
}

// RunSingle reads the first command from in, executes it, and writes its
// result. Blank lines before the command are skipped; anything after it is
// ignored. An undecodable command still produces a result line but returns
// ErrInvalidCommand. Empty input is a success with no output.
func (r *Runner) RunSingle(ctx context.Context, in io.Reader, out io.Writer) (bool, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxCommandBytes)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		cmd, err := command.Decode(line)
		if err != nil {
			r.logger.Printf("rejecting malformed command: %v", err)
			if encErr := encoder.Encode(executor.Result{ErrorMessage: err.Error()}); encErr != nil {
				return false, encErr
			}
			return false, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}

		res := r.RunOnce(cmd)
		if err := encoder.Encode(res); err != nil {
			return false, err
		}
		return res.Success, nil
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return false, errors.New("command line exceeds maximum length")
		}
		return false, err
	}
	return true, nil
}

// Run consumes commands from in until EOF or context cancellation and
// writes one result line per command. It reports whether every executed
// command succeeded.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (bool, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxCommandBytes)
	encoder := json.NewEncoder(out)

	allOK := true
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return allOK, ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var res executor.Result
		cmd, err := command.Decode(line)
		if err != nil {
			r.logger.Printf("rejecting malformed command: %v", err)
			res = executor.Result{ErrorMessage: err.Error()}
		} else {
			res = r.RunOnce(cmd)
		}

		if !res.Success {
			allOK = false
		}
		if err := encoder.Encode(res); err != nil {
			return false, err
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return false, errors.New("command line exceeds maximum length")
		}
		return false, err
	}
	return allOK, nil
}

// refreshFreeSpace updates the free-space gauge for the paths a command
// touched. Best effort; stat failures are not worth logging per command.
func (r *Runner) refreshFreeSpace(cmd command.Command) {
	for _, path := range []string{cmd.Source, cmd.Destination} {
		if path == "" {
			continue
		}
		expanded := pathutil.ExpandPath(path)
		if free, err := disk.GetFreePercent(expanded); err == nil {
			metrics.UpdateFreeSpacePercent(expanded, free)
		}
	}
}
