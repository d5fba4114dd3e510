package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/verstamp/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config [key]",
		Short: "View the effective configuration",
		Long: `View the effective verstamp configuration.

Values come from defaults, .verstamp.yaml in the working directory, and
VERSTAMP_* environment variables.

With no arguments, displays all configuration.
With one argument, displays the value for the specified key.`,
		Example: `  # Show all config
  verstamp config

  # Show value for a specific key
  verstamp config output.path

  # List valid keys
  verstamp config --keys`,
		Args: cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if keys, _ := cmd.Flags().GetBool("keys"); keys {
				for _, k := range config.Keys() {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			}

			if len(args) == 1 {
				return runShowKey(cmd, args[0])
			}
			return runShowAll(cmd)
		},
	}

	cmd.Flags().Bool("keys", false, "list valid configuration keys")

	return cmd
}

func runShowAll(cmd *cobra.Command) error {
	cfg, err := requireConfig(cmd.Context())
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func runShowKey(cmd *cobra.Command, key string) error {
	loader, err := requireLoader(cmd.Context())
	if err != nil {
		return err
	}

	value, err := loader.Get(key)
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case nil:
		fmt.Fprintln(cmd.OutOrStdout(), "")
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case map[string]any:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal value: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
	default:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}

	return nil
}
