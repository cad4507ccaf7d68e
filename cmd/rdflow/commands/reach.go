package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/rdflow/pkg/report"
)

// reachCmd represents the reach command
var reachCmd = &cobra.Command{
	Use:   "reach <file>",
	Short: "Run reaching definitions analysis on a C file",
	Long: `Builds the CFG of a single-function C file and solves reaching definitions
over it. Prints every definition, the final gen/kill/in/out sets per block and
the findings: variables with several reaching definitions and definitions
that are never killed. Use "-" to read stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		iterations, _ := cmd.Flags().GetBool("iterations")

		p, _ := newPipeline(false)
		r, err := p.AnalyzeFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			data, err := json.MarshalIndent(r, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		report.NewText(out).Reach(r, iterations)
		if !r.Reaching.Converged {
			logger.Warn("analysis did not converge", "file", r.Name, "max_rounds", appConfig.MaxRounds)
		}
		return nil
	},
}

func init() {
	reachCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	reachCmd.Flags().BoolP("iterations", "i", false, "Print in/out sets after every round")
	RootCmd.AddCommand(reachCmd)
}
