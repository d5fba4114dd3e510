// Package exec provides an abstraction over executing external commands.
package exec

import (
	"context"
	"fmt"
	"strings"
)

// Result holds the output from a completed command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// RunOptions configures command execution.
type RunOptions struct {
	Name string   // Command name or path (required)
	Args []string // Command arguments
	Dir  string   // Working directory (empty = current)
	Env  []string // Additional environment variables (KEY=VALUE format)
}

// CommandError is returned by Run when a command cannot be started or exits
// with a non-zero status.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	cmdline := strings.TrimSpace(e.Name + " " + strings.Join(e.Args, " "))
	if e.Stderr != "" {
		return fmt.Sprintf("%s: exit status %d: %s", cmdline, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", cmdline, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Executor runs external commands.
type Executor interface {
	// Run executes a command and returns its captured output.
	// On failure the Result is still returned (when the process started) and
	// the error is a *CommandError wrapping the os/exec error.
	Run(ctx context.Context, opts *RunOptions) (*Result, error)

	// LookPath searches for an executable in PATH.
	LookPath(name string) (string, error)
}
