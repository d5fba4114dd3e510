package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmgilman/verstamp/internal/exec"
)

type opener struct {
	exec   exec.Executor
	binary string
}

// NewOpener creates a new Opener that runs the given git binary through the
// provided Executor. An empty binary uses DefaultBinary.
func NewOpener(e exec.Executor, binary string) Opener {
	if binary == "" {
		binary = DefaultBinary
	}
	return &opener{exec: e, binary: binary}
}

func (o *opener) Open(ctx context.Context, path string) (Repository, error) {
	result, err := o.exec.Run(ctx, &exec.RunOptions{
		Name: o.binary,
		Args: []string{"rev-parse", "--show-toplevel"},
		Dir:  path,
	})
	if err != nil {
		if result != nil && strings.Contains(string(result.Stderr), "not a git repository") {
			return nil, fmt.Errorf("%w: %w", ErrNotRepository, err)
		}
		return nil, fmt.Errorf("get repository root: %w", err)
	}

	return &repository{
		root:   strings.TrimSpace(string(result.Stdout)),
		dir:    path,
		binary: o.binary,
		exec:   o.exec,
	}, nil
}
