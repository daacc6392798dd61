package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Supported actions
const (
	ActionMove         = "move"
	ActionCopy         = "copy"
	ActionDelete       = "delete"
	ActionCreateFolder = "create_folder"
)

var (
	ErrMissingAction      = errors.New("command must specify an action")
	ErrMissingSource      = errors.New("command must specify a source directory")
	ErrMissingDestination = errors.New("command must specify a destination")
)

// Command is a single validated file-management request.
// It is produced by an external front end (CLI, API) and consumed by the
// executor; this package never parses free-form text.
type Command struct {
	Action      string `json:"action"`
	Pattern     string `json:"pattern"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	DryRun      bool   `json:"dry_run"`
	Force       bool   `json:"force"`
	Recursive   bool   `json:"recursive"`
	Verbose     bool   `json:"verbose"`
}

// Decode parses a single line-delimited JSON command.
// A missing or non-string action is a hard input error at this boundary.
func Decode(line []byte) (Command, error) {
	var raw struct {
		Action      *string `json:"action"`
		Pattern     string  `json:"pattern"`
		Source      string  `json:"source"`
		Destination string  `json:"destination"`
		DryRun      bool    `json:"dry_run"`
		Force       bool    `json:"force"`
		Recursive   bool    `json:"recursive"`
		Verbose     bool    `json:"verbose"`
	}
	if err := json.Unmarshal(line, &raw); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	if raw.Action == nil || *raw.Action == "" {
		return Command{}, ErrMissingAction
	}
	return Command{
		Action:      *raw.Action,
		Pattern:     raw.Pattern,
		Source:      raw.Source,
		Destination: raw.Destination,
		DryRun:      raw.DryRun,
		Force:       raw.Force,
		Recursive:   raw.Recursive,
		Verbose:     raw.Verbose,
	}, nil
}

// Validate checks that the required fields for the action kind are present.
// Unknown actions pass validation; the executor rejects them with a
// descriptive result so callers get a structured error instead of a
// boundary failure.
func (c Command) Validate() error {
	if c.Action == "" {
		return ErrMissingAction
	}
	switch c.Action {
	case ActionMove, ActionCopy:
		if c.Source == "" {
			return ErrMissingSource
		}
		if c.Destination == "" {
			return ErrMissingDestination
		}
	case ActionDelete:
		if c.Source == "" {
			return ErrMissingSource
		}
	case ActionCreateFolder:
		if c.Destination == "" {
			return ErrMissingDestination
		}
	}
	return nil
}

// String renders the command for verbose narration and logs.
func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Action)
	if c.Pattern != "" {
		fmt.Fprintf(&b, " files matching %q", c.Pattern)
	}
	if c.Source != "" {
		fmt.Fprintf(&b, " from %q", c.Source)
	}
	if c.Destination != "" {
		fmt.Fprintf(&b, " to %q", c.Destination)
	}
	if c.Recursive {
		b.WriteString(" (recursive)")
	}
	if c.DryRun {
		b.WriteString(" (dry-run)")
	}
	return b.String()
}
