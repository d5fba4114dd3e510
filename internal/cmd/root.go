// Package cmd implements the verstamp CLI using Cobra.
// Running verstamp with no subcommand derives a semantic version from
// git describe and writes it to the version file.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmgilman/verstamp/internal/config"
	"github.com/jmgilman/verstamp/internal/slogger"
)

// newRootCmd builds the verstamp command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "verstamp",
		Short: "Write a semantic version derived from git describe",
		Long: `verstamp derives a semantic version from the nearest git tag and writes it
to a file named "version" in the current directory.

At a clean tag the version is the tag itself. Past a tag, or with uncommitted
changes, the last numeric component of the tag is incremented and build
metadata is appended:

  2.5.0                    -> 2.5.0
  2.5.0-3-gabc1234         -> 2.5.1-commit+abc1234
  2.5.0-3-gabc1234-dirty   -> 2.5.1-dirty+abc1234

Settings are read from .verstamp.yaml in the working directory and from
VERSTAMP_* environment variables. Flags take precedence.`,
		Example: `  # Write ./version
  verstamp

  # Write build/VERSION using lightweight tags starting with "v"
  verstamp -o build/VERSION --tags --match 'v*'

  # Exit non-zero when git fails
  verstamp --fail`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runStamp,
	}

	rootCmd.PersistentFlags().StringP("dir", "C", "", "run as if started in this directory")
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity (-v info, -vv debug)")

	rootCmd.Flags().StringP("output", "o", "", "output file (default \"version\")")
	rootCmd.Flags().Bool("tags", false, "consider lightweight tags")
	rootCmd.Flags().String("match", "", "only consider tags matching this glob")
	rootCmd.Flags().Int("abbrev", 0, "abbreviated hash length (default: git's choice)")
	rootCmd.Flags().Bool("strict", false, "fail unless the result is a strict semantic version")
	rootCmd.Flags().Bool("fail", false, "exit non-zero when git fails")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// setup initializes logging and configuration for every command.
func setup(cmd *cobra.Command, _ []string) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	dir, _ := cmd.Flags().GetString("dir")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := slogger.New(slogger.Config{
		Verbosity: verbosity,
		Output:    cmd.ErrOrStderr(),
	})
	ctx = slogger.WithLogger(ctx, logger)

	loader, err := config.NewLoader(dir)
	if err != nil {
		return fmt.Errorf("init config loader: %w", err)
	}

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Debug("loaded config", "path", loader.Path())

	ctx = WithConfig(ctx, cfg)
	ctx = WithLoader(ctx, loader)
	cmd.SetContext(ctx)

	return nil
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context, args []string) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// Main runs verstamp with the process arguments and returns the exit code.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Execute(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		return 1
	}
	return 0
}
