// Package git provides an abstraction over the git operations used to derive
// a version.
package git

import (
	"context"
	"errors"
)

// DefaultBinary is the git executable looked up in PATH.
const DefaultBinary = "git"

// Sentinel errors for git operations.
var (
	ErrNotRepository = errors.New("not a git repository")
	ErrNoTags        = errors.New("no tags can describe HEAD")
)

// DescribeOptions configures git describe.
type DescribeOptions struct {
	Tags   bool   // Consider lightweight tags (--tags)
	Match  string // Only consider tags matching this glob (--match)
	Abbrev int    // Abbreviated hash length; 0 uses git's default
}

// Repository provides git operations for a repository.
type Repository interface {
	// Root returns the absolute path to the repository root.
	Root() string

	// Describe runs git describe --dirty --abbrev and returns its trimmed output.
	// Returns ErrNoTags (wrapping the command error) when no tag is reachable.
	Describe(ctx context.Context, opts DescribeOptions) (string, error)

	// ShortHash returns the abbreviated hash of HEAD.
	// An abbrev of 0 uses git's default length.
	ShortHash(ctx context.Context, abbrev int) (string, error)
}

// Opener opens git repositories.
type Opener interface {
	// Open opens the git repository containing the given path.
	// Returns ErrNotRepository if the path is not inside a git repository.
	Open(ctx context.Context, path string) (Repository, error)
}
