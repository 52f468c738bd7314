package main

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect defacto configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration after merging defaults, the config file and
DEFACTO_* environment variables. Passwords in the Postgres DSN are masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cfg.Dump(cmd.OutOrStdout())
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
