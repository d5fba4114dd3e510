// Package stamp derives a version from git metadata and writes it to a file.
package stamp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/jmgilman/verstamp/internal/git"
	"github.com/jmgilman/verstamp/internal/semver"
	"github.com/jmgilman/verstamp/internal/slogger"
)

const fileMode = 0644

// Options configures a single derivation.
type Options struct {
	Dir      string              // Directory inside the repository (empty = current)
	Output   string              // Output file, relative to Dir unless absolute
	Describe git.DescribeOptions // git describe options
	Abbrev   int                 // Short hash length; 0 uses git's default
	Strict   bool                // Require a strict semantic version
}

// Result describes a derived version.
type Result struct {
	Version    string
	Path       string
	Descriptor semver.Descriptor
}

// Exact reports whether the version is the tag itself.
func (r *Result) Exact() bool {
	return r.Descriptor.Exact()
}

// Deriver computes versions and writes them to disk.
type Deriver struct {
	opener git.Opener
	fs     afero.Fs
	out    io.Writer
}

// NewDeriver creates a Deriver. Status lines are written to out; a nil out
// uses os.Stdout.
func NewDeriver(opener git.Opener, fs afero.Fs, out io.Writer) *Deriver {
	if out == nil {
		out = os.Stdout
	}
	return &Deriver{
		opener: opener,
		fs:     fs,
		out:    out,
	}
}

// Derive computes the version for the repository containing opts.Dir
// without writing anything.
func (d *Deriver) Derive(ctx context.Context, opts Options) (*Result, error) {
	log := slogger.L(ctx)

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	repo, err := d.opener.Open(ctx, dir)
	if err != nil {
		return nil, err
	}
	log.Debug("opened repository", "root", repo.Root())

	raw, err := repo.Describe(ctx, opts.Describe)
	if err != nil {
		return nil, err
	}

	desc, err := semver.ParseDescriptor(raw)
	if err != nil {
		return nil, err
	}
	log.Debug("parsed descriptor",
		"raw", desc.Raw,
		"tag", desc.Tag,
		"commits", desc.CommitsAhead,
		"dirty", desc.Dirty)

	var hash string
	if !desc.Exact() {
		hash, err = repo.ShortHash(ctx, opts.Abbrev)
		if err != nil {
			return nil, err
		}
	}

	v, err := semver.Next(desc, hash)
	if err != nil {
		return nil, err
	}

	if opts.Strict {
		if err := semver.Validate(v); err != nil {
			return nil, err
		}
	}

	return &Result{
		Version:    v,
		Path:       outputPath(opts),
		Descriptor: desc,
	}, nil
}

// Run derives the version, reports it and writes it to the output file.
// The file is left untouched when derivation fails.
func (d *Deriver) Run(ctx context.Context, opts Options) (*Result, error) {
	res, err := d.Derive(ctx, opts)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(d.out, "Semantic version is %s\n", res.Version)

	if err := afero.WriteFile(d.fs, res.Path, []byte(res.Version), fileMode); err != nil {
		return nil, fmt.Errorf("write version file: %w", err)
	}
	slogger.L(ctx).Info("wrote version file", "path", res.Path, "version", res.Version)

	return res, nil
}

// outputPath resolves the output file against the working directory option.
func outputPath(opts Options) string {
	if filepath.IsAbs(opts.Output) || opts.Dir == "" {
		return opts.Output
	}
	return filepath.Join(opts.Dir, opts.Output)
}
