package commands

import (
	"github.com/spf13/cobra"

	"github.com/TimurManjosov/trackerrules/internal/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Display the configuration resolved from the environment, .env and defaults.

Example:
  trackerrules config --format yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outFormat, err := cli.ParseFormat(format)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return cli.PrintConfig(cmd.OutOrStdout(), cfg, outFormat)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
