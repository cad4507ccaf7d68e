package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/rdflow/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize rdflow configuration interactively",
	Long: `Guides you through setting up rdflow configuration step by step.
Creates .rdflow/config.yaml in the current directory, or ~/.rdflow/config.yaml
with --global.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")
		path := config.ProjectConfigPath()
		if global {
			path = config.GlobalConfigPath()
		}
		return runInit(cmd, path)
	},
}

func runInit(cmd *cobra.Command, path string) error {
	if _, err := os.Stat(path); err == nil {
		overwrite := false
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("%s already exists", path)).
					Description("Overwrite it?").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted, configuration unchanged.")
			return nil
		}
	}

	c := config.DefaultConfig()

	// === SECTION 1: Analysis ===
	maxRounds := strconv.Itoa(c.MaxRounds)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Block linker").
				Description("How basic blocks are connected").
				Options(
					huh.NewOption("Heuristic (next one or two blocks, no back edges)", "heuristic"),
					huh.NewOption("Structured (follows braces, adds loop back edges)", "structured"),
				).
				Value(&c.Linker),
			huh.NewSelect[string]().
				Title("Definition classifier").
				Description("How assignments are recognised in statements").
				Options(
					huh.NewOption("Regex", "regex"),
					huh.NewOption("Tree-sitter C grammar", "treesitter"),
				).
				Value(&c.Classifier),
			huh.NewInput().
				Title("Maximum solver rounds").
				Value(&maxRounds).
				Validate(positiveInt),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	c.MaxRounds, _ = strconv.Atoi(maxRounds)

	// === SECTION 2: Reports and cache ===
	parallel := strconv.Itoa(c.Parallel)
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Report output directory").
				Placeholder(c.OutputDir).
				Value(&c.OutputDir),
			huh.NewInput().
				Title("Files analysed in parallel").
				Value(&parallel).
				Validate(positiveInt),
			huh.NewConfirm().
				Title("Cache analysis results?").
				Description(fmt.Sprintf("Results are stored in %s", c.Cache.Dir)).
				Value(&c.Cache.Enabled),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	c.Parallel, _ = strconv.Atoi(parallel)
	if c.OutputDir == "" {
		c.OutputDir = config.DefaultConfig().OutputDir
	}

	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
	return nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func init() {
	initCmd.Flags().Bool("global", false, "Write the global config instead of the project config")
	RootCmd.AddCommand(initCmd)
}
