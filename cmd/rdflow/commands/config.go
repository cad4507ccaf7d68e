package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/rdflow/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect rdflow configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Prints the configuration after merging defaults, the global config file,
RDFLOW_* environment variables, the project config file and command-line flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := appConfig.YAML()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file locations",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "global:  %s\n", config.GlobalConfigPath())
		fmt.Fprintf(out, "project: %s\n", config.ProjectConfigPath())
		if configPath != "" {
			fmt.Fprintf(out, "flag:    %s\n", configPath)
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	RootCmd.AddCommand(configCmd)
}
