package exec

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
)

type executor struct{}

// New returns a new Executor that uses os/exec.
func New() Executor {
	return &executor{}
}

func (e *executor) Run(ctx context.Context, opts *RunOptions) (*Result, error) {
	cmd := exec.CommandContext(ctx, opts.Name, opts.Args...) //nolint:gosec // Intentional subprocess execution

	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Name:     opts.Name,
			Args:     opts.Args,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderrBuf.String()),
			Err:      err,
		}
		// ProcessState is nil when the binary could not be started.
		if cmd.ProcessState == nil {
			return nil, cmdErr
		}
		cmdErr.ExitCode = cmd.ProcessState.ExitCode()
		return &Result{
			Stdout:   stdoutBuf.Bytes(),
			Stderr:   stderrBuf.Bytes(),
			ExitCode: cmdErr.ExitCode,
		}, cmdErr
	}

	return &Result{
		Stdout:   stdoutBuf.Bytes(),
		Stderr:   stderrBuf.Bytes(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}, nil
}

func (e *executor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
