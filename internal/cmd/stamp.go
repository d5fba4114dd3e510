package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jmgilman/verstamp/internal/config"
	"github.com/jmgilman/verstamp/internal/exec"
	"github.com/jmgilman/verstamp/internal/git"
	"github.com/jmgilman/verstamp/internal/slogger"
	"github.com/jmgilman/verstamp/internal/stamp"
)

// ErrGitFailed is returned when git fails and failure.fatal is set.
var ErrGitFailed = errors.New("git command failed")

func runStamp(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := slogger.L(ctx)

	cfg, err := requireConfig(ctx)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Git.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Git.Timeout)
		defer cancel()
	}

	executor := exec.New()
	binary, err := executor.LookPath(cfg.Git.Binary)
	if err != nil {
		return handleGitFailure(cmd, cfg, &exec.CommandError{
			Name:     cfg.Git.Binary,
			ExitCode: -1,
			Err:      err,
		})
	}
	log.Debug("using git", "path", binary)

	dir, _ := cmd.Flags().GetString("dir")
	deriver := stamp.NewDeriver(git.NewOpener(executor, binary), afero.NewOsFs(), cmd.OutOrStdout())

	_, err = deriver.Run(ctx, stamp.Options{
		Dir:    dir,
		Output: cfg.Output.Path,
		Describe: git.DescribeOptions{
			Tags:   cfg.Git.Tags,
			Match:  cfg.Git.Match,
			Abbrev: cfg.Git.Abbrev,
		},
		Abbrev: cfg.Git.Abbrev,
		Strict: cfg.Output.Strict,
	})
	if err != nil {
		var cmdErr *exec.CommandError
		if errors.As(err, &cmdErr) {
			return handleGitFailure(cmd, cfg, err)
		}
		return err
	}

	return nil
}

// handleGitFailure reports a failed git invocation. The version file is not
// written. Unless failure.fatal is set the command still succeeds.
func handleGitFailure(cmd *cobra.Command, cfg *config.Config, err error) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Error calling git: %v\n", err)
	slogger.L(cmd.Context()).Debug("version file not written", "fatal", cfg.Failure.Fatal)

	if cfg.Failure.Fatal {
		return fmt.Errorf("%w: %w", ErrGitFailed, err)
	}
	return nil
}

// applyFlags overrides configuration values with explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("output") {
		v, err := flags.GetString("output")
		if err != nil {
			return err
		}
		cfg.Output.Path = v
	}
	if flags.Changed("tags") {
		v, err := flags.GetBool("tags")
		if err != nil {
			return err
		}
		cfg.Git.Tags = v
	}
	if flags.Changed("match") {
		v, err := flags.GetString("match")
		if err != nil {
			return err
		}
		cfg.Git.Match = v
	}
	if flags.Changed("abbrev") {
		v, err := flags.GetInt("abbrev")
		if err != nil {
			return err
		}
		cfg.Git.Abbrev = v
	}
	if flags.Changed("strict") {
		v, err := flags.GetBool("strict")
		if err != nil {
			return err
		}
		cfg.Output.Strict = v
	}
	if flags.Changed("fail") {
		v, err := flags.GetBool("fail")
		if err != nil {
			return err
		}
		cfg.Failure.Fatal = v
	}

	return nil
}
