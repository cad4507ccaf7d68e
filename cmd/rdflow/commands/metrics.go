package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/rdflow/internal/scanner"
	"github.com/l3aro/rdflow/pkg/report"
)

// metricsCmd represents the metrics command
var metricsCmd = &cobra.Command{
	Use:   "metrics <path>...",
	Short: "Print CFG metrics for files or directories",
	Long: `Prints the number of blocks (N), edges (E) and the cyclomatic complexity
(CC = E - N + 2) of every C file given. Directories are scanned recursively
for the configured extensions, honouring .rdflowignore files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		paths, err := collect(args)
		if err != nil {
			return err
		}

		p, rc := newPipeline(true)
		results, err := p.Batch(cmd.Context(), paths, nil)
		if err != nil {
			return err
		}
		if rc != nil {
			if err := rc.Save(); err != nil {
				logger.Warn("could not save cache", "error", err)
			}
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			type row struct {
				Name    string      `json:"name"`
				Metrics interface{} `json:"metrics"`
			}
			rows := make([]row, len(results))
			for i, r := range results {
				rows[i] = row{Name: r.Name, Metrics: r.Metrics}
			}
			data, err := json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		report.NewText(out).Metrics(results)
		return nil
	},
}

// collect expands args into source files using the configured extensions.
func collect(args []string) ([]string, error) {
	opts := scanner.DefaultOptions()
	if len(appConfig.Extensions) > 0 {
		opts.Extensions = appConfig.Extensions
	}
	return scanner.Collect(args, opts)
}

func init() {
	metricsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(metricsCmd)
}
