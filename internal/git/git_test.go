package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/verstamp/internal/exec"
)

// resolvePath resolves symlinks in a path (handles macOS /var -> /private/var).
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}

// runGit runs a git command in dir and returns its trimmed stdout.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	result, err := exec.New().Run(context.Background(), &exec.RunOptions{
		Name: "git",
		Args: args,
		Dir:  dir,
	})
	require.NoError(t, err, "git %s", strings.Join(args, " "))
	return strings.TrimSpace(string(result.Stdout))
}

// testRepo creates a git repository with one commit in a temp directory.
func testRepo(t *testing.T) string {
	t.Helper()

	dir := resolvePath(t, t.TempDir())

	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	runGit(t, dir, "config", "tag.gpgsign", "false")

	commitFile(t, dir, "initial commit")
	return dir
}

// commitFile appends a line to README.md and commits it.
func commitFile(t *testing.T, dir, msg string) {
	t.Helper()

	path := filepath.Join(dir, "README.md")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(msg + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	runGit(t, dir, "add", "README.md")
	runGit(t, dir, "commit", "-m", msg)
}

// tagAnnotated creates an annotated tag at HEAD.
func tagAnnotated(t *testing.T, dir, name string) {
	t.Helper()
	runGit(t, dir, "tag", "-a", name, "-m", "release "+name)
}

// makeDirty modifies a tracked file without committing.
func makeDirty(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed\n"), 0644))
}

func TestOpener_Open(t *testing.T) {
	opener := NewOpener(exec.New(), "")
	ctx := context.Background()

	t.Run("opens valid repository", func(t *testing.T) {
		repoDir := testRepo(t)

		repo, err := opener.Open(ctx, repoDir)

		require.NoError(t, err)
		assert.Equal(t, repoDir, repo.Root())
	})

	t.Run("opens repository from subdirectory", func(t *testing.T) {
		repoDir := testRepo(t)
		subDir := filepath.Join(repoDir, "subdir")
		require.NoError(t, os.MkdirAll(subDir, 0755))

		repo, err := opener.Open(ctx, subDir)

		require.NoError(t, err)
		assert.Equal(t, resolvePath(t, repoDir), resolvePath(t, repo.Root()))
	})

	t.Run("returns error for non-repository", func(t *testing.T) {
		nonRepoDir := t.TempDir()
		t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(nonRepoDir))

		_, err := opener.Open(ctx, nonRepoDir)

		assert.ErrorIs(t, err, ErrNotRepository)
		var cmdErr *exec.CommandError
		assert.ErrorAs(t, err, &cmdErr)
	})

	t.Run("returns command error for missing binary", func(t *testing.T) {
		missing := NewOpener(exec.New(), "nonexistent_git_12345")

		_, err := missing.Open(ctx, t.TempDir())

		var cmdErr *exec.CommandError
		require.ErrorAs(t, err, &cmdErr)
		assert.NotErrorIs(t, err, ErrNotRepository)
	})
}

func TestRepository_Describe(t *testing.T) {
	opener := NewOpener(exec.New(), "")
	ctx := context.Background()

	t.Run("returns tag when exactly at tag", func(t *testing.T) {
		repoDir := testRepo(t)
		tagAnnotated(t, repoDir, "2.5.0")
		repo, err := opener.Open(ctx, repoDir)
		require.NoError(t, err)

		out, err := repo.Describe(ctx, DescribeOptions{})

		require.NoError(t, err)
		assert.Equal(t, "2.5.0", out)
	})

	t.Run("returns long form past tag", func(t *testing.T) {
		repoDir := testRepo(t)
		tagAnnotated(t, repoDir, "2.5.0")
		commitFile(t, repoDir, "second")
		commitFile(t, repoDir, "third")
		repo, err := opener.Open(ctx, repoDir)
		require.NoError(t, err)

		out, err := repo.Describe(ctx, DescribeOptions{})

		require.NoError(t, err)
		assert.Regexp(t, `^2\.5\.0-2-g[0-9a-f]+$`, out)
	})

	t.Run("appends dirty marker", func(t *testing.T) {
		repoDir := testRepo(t)
		tagAnnotated(t, repoDir, "2.5.0")
		makeDirty(t, repoDir)
		repo, err := opener.Open(ctx, repoDir)
		require.NoError(t, err)

		out, err := repo.Describe(ctx, DescribeOptions{})

		require.NoError(t, err)
		assert.Equal(t, "2.5.0-dirty", out)
	})

	t.Run("ignores lightweight tags unless requested", func(t *testing.T) {
		repoDir := testRepo(t)
		runGit(t, repoDir, "tag", "1.0.0")
		repo, err := opener.Open(ctx, repoDir)
		require.NoError(t, err)

		_, err = repo.Describe(ctx, DescribeOptions{})
		assert.ErrorIs(t, err, ErrNoTags)

		out, err := repo.Describe(ctx, DescribeOptions{Tags: true})
		require.NoError(t, err)
		assert.Equal(t, "1.0.0", out)
	})

	t.Run("filters tags with match", func(t *testing.T) {
		repoDir := testRepo(t)
		tagAnnotated(t, repoDir, "v1.0.0")
		commitFile(t, repoDir, "second")
		tagAnnotated(t, repoDir, "docs-1")
		repo, err := opener.Open(ctx, repoDir)
		require.NoError(t, err)

		out, err := repo.Describe(ctx, DescribeOptions{Match: "v*"})

		require.NoError(t, err)
		assert.Regexp(t, `^v1\.0\.0-1-g[0-9a-f]+$`, out)
	})

	t.Run("returns ErrNoTags without tags", func(t *testing.T) {
		repoDir := testRepo(t)
		repo, err := opener.Open(ctx, repoDir)
		require.NoError(t, err)

		_, err = repo.Describe(ctx, DescribeOptions{})

		assert.ErrorIs(t, err, ErrNoTags)
		var cmdErr *exec.CommandError
		assert.ErrorAs(t, err, &cmdErr)
	})
}

func TestRepository_ShortHash(t *testing.T) {
	opener := NewOpener(exec.New(), "")
	ctx := context.Background()

	repoDir := testRepo(t)
	repo, err := opener.Open(ctx, repoDir)
	require.NoError(t, err)
	full := runGit(t, repoDir, "rev-parse", "HEAD")

	t.Run("default length is a prefix of HEAD", func(t *testing.T) {
		hash, err := repo.ShortHash(ctx, 0)

		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.True(t, strings.HasPrefix(full, hash))
	})

	t.Run("honors explicit length", func(t *testing.T) {
		hash, err := repo.ShortHash(ctx, 10)

		require.NoError(t, err)
		assert.Equal(t, full[:10], hash)
	})
}

func TestDescribeArgs(t *testing.T) {
	tests := []struct {
		name string
		opts DescribeOptions
		want []string
	}{
		{
			name: "defaults",
			want: []string{"describe", "--dirty", "--abbrev"},
		},
		{
			name: "explicit abbrev",
			opts: DescribeOptions{Abbrev: 12},
			want: []string{"describe", "--dirty", "--abbrev=12"},
		},
		{
			name: "tags and match",
			opts: DescribeOptions{Tags: true, Match: "v*"},
			want: []string{"describe", "--dirty", "--abbrev", "--tags", "--match", "v*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeArgs(tt.opts))
		})
	}
}

func TestIsNoTags(t *testing.T) {
	assert.True(t, isNoTags("fatal: No names found, cannot describe anything."))
	assert.True(t, isNoTags("fatal: No annotated tags can describe 'abc'.\nHowever, there were unannotated tags: try --tags."))
	assert.True(t, isNoTags("fatal: No tags can describe 'abc'."))
	assert.False(t, isNoTags("fatal: not a git repository"))
}
