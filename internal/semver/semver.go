// Package semver derives build versions from git describe output.
//
// A descriptor is the raw output of `git describe --dirty --abbrev`:
//
//	2.5.0                     exactly at tag 2.5.0
//	2.5.0-dirty               at tag 2.5.0 with uncommitted changes
//	2.5.0-3-gabc1234          three commits past tag 2.5.0
//	2.5.0-3-gabc1234-dirty    three commits past tag 2.5.0, uncommitted changes
//
// When HEAD is not exactly at a clean tag, the last numeric component of the
// tag is incremented and build metadata is appended:
// 2.5.0-3-gabc1234 becomes 2.5.1-commit+abc1234.
package semver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	blang "github.com/blang/semver"
)

// DirtySuffix is appended by git describe --dirty when tracked files have
// uncommitted modifications.
const DirtySuffix = "-dirty"

// State tags placed between the bumped version and the build metadata.
const (
	StateCommit = "commit"
	StateDirty  = "dirty"
)

// Sentinel errors for version derivation.
var (
	ErrEmptyDescriptor    = errors.New("empty descriptor")
	ErrNoNumericComponent = errors.New("no numeric version component")
	ErrInvalidVersion     = errors.New("invalid semantic version")
)

// longForm matches "<tag>-<commits>-g<hash>". The tag itself may contain '-'.
var longForm = regexp.MustCompile(`^(.+)-(\d+)-g([0-9a-f]+)$`)

// ParseError reports a descriptor or tag that cannot be turned into a version.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Descriptor is a parsed git describe result.
type Descriptor struct {
	Raw          string // Trimmed describe output
	Tag          string // Nearest reachable tag
	CommitsAhead int    // Commits between the tag and HEAD
	Hash         string // Abbreviated hash from the describe output (empty at a tag)
	Dirty        bool   // Working tree has uncommitted changes
}

// ParseDescriptor parses the output of git describe --dirty --abbrev.
func ParseDescriptor(raw string) (Descriptor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Descriptor{}, &ParseError{Input: raw, Err: ErrEmptyDescriptor}
	}

	d := Descriptor{Raw: raw}
	body := raw
	if strings.HasSuffix(body, DirtySuffix) {
		d.Dirty = true
		body = strings.TrimSuffix(body, DirtySuffix)
	}

	if m := longForm.FindStringSubmatch(body); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return Descriptor{}, &ParseError{Input: raw, Err: fmt.Errorf("commit count: %w", err)}
		}
		d.Tag = m[1]
		d.CommitsAhead = n
		d.Hash = m[3]
	} else {
		d.Tag = body
	}

	if d.Tag == "" {
		return Descriptor{}, &ParseError{Input: raw, Err: ErrEmptyDescriptor}
	}

	return d, nil
}

// Exact reports whether HEAD is exactly at the tag with a clean working tree.
func (d Descriptor) Exact() bool {
	return d.CommitsAhead == 0 && !d.Dirty
}

// BaseVersion returns the tag up to its first '-'.
func (d Descriptor) BaseVersion() string {
	if i := strings.Index(d.Tag, "-"); i >= 0 {
		return d.Tag[:i]
	}
	return d.Tag
}

// State returns StateDirty for a dirty working tree and StateCommit otherwise.
func (d Descriptor) State() string {
	if d.Dirty {
		return StateDirty
	}
	return StateCommit
}

// Bump increments the last '.'-delimited component of base by one.
// Any prefix is preserved: v1.2.3 becomes v1.2.4.
func Bump(base string) (string, error) {
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return "", &ParseError{Input: base, Err: ErrNoNumericComponent}
	}

	n, err := strconv.Atoi(base[i+1:])
	if err != nil || n < 0 {
		return "", &ParseError{Input: base, Err: ErrNoNumericComponent}
	}

	return base[:i+1] + strconv.Itoa(n+1), nil
}

// Assemble joins a bumped version, a state tag and a short hash into
// "<version>-<state>+<hash>".
func Assemble(version, state, hash string) string {
	return version + "-" + state + "+" + hash
}

// Next returns the version that follows d, given the short hash of HEAD.
// For an exact descriptor the tag is returned unchanged.
func Next(d Descriptor, shortHash string) (string, error) {
	if d.Exact() {
		return d.Tag, nil
	}

	bumped, err := Bump(d.BaseVersion())
	if err != nil {
		return "", err
	}

	return Assemble(bumped, d.State(), shortHash), nil
}

// Validate checks that v is a strict semantic version. A leading "v" is
// accepted.
func Validate(v string) error {
	if _, err := blang.Parse(strings.TrimPrefix(v, "v")); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidVersion, v, err)
	}
	return nil
}
