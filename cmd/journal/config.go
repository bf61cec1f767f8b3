package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or generate configuration",
		Long: `Manage the journal configuration.

Subcommands:
  show  - Print the effective configuration with secrets masked
  init  - Write a config.yml holding every default

Examples:
  journal config show --config ./configs
  journal config init -o ./configs/config.yml`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.bootstrap()
			if err != nil {
				return err
			}
			out, err := cfg.Redacted().Marshal()
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config.yml holding every default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(output); err == nil {
				return fmt.Errorf("%s already exists", output)
			}
			cfg, _, err := opts.bootstrap()
			if err != nil {
				return err
			}
			out, err := cfg.Template().Marshal()
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			if err := os.WriteFile(output, out, 0o600); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s. Set auth.users and auth.session_secret before serving.\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "config.yml", "output config file path")
	cmd.AddCommand(initCmd)

	return cmd
}
