package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmgilman/verstamp/internal/exec"
)

type repository struct {
	root   string
	dir    string // Directory commands run in; may be below root
	binary string
	exec   exec.Executor
}

func (r *repository) Root() string {
	return r.root
}

func (r *repository) Describe(ctx context.Context, opts DescribeOptions) (string, error) {
	result, err := r.exec.Run(ctx, &exec.RunOptions{
		Name: r.binary,
		Args: describeArgs(opts),
		Dir:  r.dir,
	})
	if err != nil {
		if result != nil && isNoTags(string(result.Stderr)) {
			return "", fmt.Errorf("%w: %w", ErrNoTags, err)
		}
		return "", fmt.Errorf("describe: %w", err)
	}

	return strings.TrimSpace(string(result.Stdout)), nil
}

func (r *repository) ShortHash(ctx context.Context, abbrev int) (string, error) {
	short := "--short"
	if abbrev > 0 {
		short += "=" + strconv.Itoa(abbrev)
	}

	result, err := r.exec.Run(ctx, &exec.RunOptions{
		Name: r.binary,
		Args: []string{"rev-parse", short, "HEAD"},
		Dir:  r.dir,
	})
	if err != nil {
		return "", fmt.Errorf("get short hash: %w", err)
	}

	return strings.TrimSpace(string(result.Stdout)), nil
}

// describeArgs builds the git describe argument list.
func describeArgs(opts DescribeOptions) []string {
	args := []string{"describe", "--dirty"}

	if opts.Abbrev > 0 {
		args = append(args, "--abbrev="+strconv.Itoa(opts.Abbrev))
	} else {
		args = append(args, "--abbrev")
	}
	if opts.Tags {
		args = append(args, "--tags")
	}
	if opts.Match != "" {
		args = append(args, "--match", opts.Match)
	}

	return args
}

// isNoTags reports whether git describe failed because no tag is reachable.
// git prints "No names found" for a repository without tags, and
// "No tags can describe" / "No annotated tags can describe" when the
// reachable tags are filtered out.
func isNoTags(stderr string) bool {
	return strings.Contains(stderr, "No names found") ||
		strings.Contains(stderr, "can describe")
}
