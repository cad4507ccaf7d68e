// Package commands provides the CLI commands for rdflow.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/rdflow/internal/config"
	"github.com/l3aro/rdflow/internal/log"
	"github.com/l3aro/rdflow/pkg/analysis"
)

var (
	configPath string

	// appConfig and logger are set by PersistentPreRunE before any command runs.
	appConfig *config.Config
	logger    *log.ZapLogger
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "rdflow",
	Short: "rdflow - Control flow graphs and reaching definitions for C",
	Long: `rdflow builds a control flow graph for a single-function C source file
and runs an iterative reaching definitions analysis over it.

Commands:
  cfg         Print the basic blocks and edges of a file
  reach       Print gen/kill/in/out sets and findings
  metrics     Print N, E and cyclomatic complexity for files or directories
  report      Write Markdown and Graphviz reports for a batch of files
  init        Create a project configuration interactively
  config      Show the effective configuration
  doctor      Check that the configuration is usable

Use "rdflow [command] --help" for more information about a command.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

// Sync flushes the logger, if one was created.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var (
		c   *config.Config
		err error
	)
	if configPath != "" {
		c, err = config.LoadFromFile(configPath)
	} else {
		c, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("linker") {
		c.Linker, _ = flags.GetString("linker")
	}
	if flags.Changed("classifier") {
		c.Classifier, _ = flags.GetString("classifier")
	}
	if flags.Changed("verbose") {
		c.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("log-json") {
		c.LogJSON, _ = flags.GetBool("log-json")
	}
	if err := c.Validate(); err != nil {
		return err
	}

	level := log.InfoLevel
	if c.Verbose {
		level = log.DebugLevel
	}
	logger = log.New(log.LoggerConfig{Level: level, JSONOutput: c.LogJSON})
	appConfig = c

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(log.WithLogger(ctx, logger))

	logger.Debug("configuration loaded",
		"linker", c.Linker,
		"classifier", c.Classifier,
		"max_rounds", c.MaxRounds,
	)
	return nil
}

// newPipeline creates a pipeline from the loaded configuration. The cache is
// opened only when useCache is set and caching is enabled; a cache that
// cannot be read is logged and skipped.
func newPipeline(useCache bool) (*analysis.Pipeline, *analysis.ResultCache) {
	opts := analysis.Options{
		Linker:     appConfig.LinkMode(),
		Classifier: appConfig.ClassifierKind(),
		MaxRounds:  appConfig.MaxRounds,
	}
	options := []analysis.Option{analysis.WithParallel(appConfig.Parallel)}

	var rc *analysis.ResultCache
	if useCache && appConfig.Cache.Enabled {
		var err error
		rc, err = analysis.OpenCache(appConfig.Cache.Dir, appConfig.Cache.MaxEntries)
		if err != nil {
			logger.Warn("ignoring unreadable cache", "dir", appConfig.Cache.Dir, "error", err)
			rc = analysis.NewResultCache(appConfig.Cache.MaxEntries)
		}
		options = append(options, analysis.WithCache(rc))
	}
	return analysis.New(opts, options...), rc
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file path (default: ./.rdflow/config.yaml over ~/.rdflow/config.yaml)")
	pf.BoolP("verbose", "v", false, "Verbose logging")
	pf.Bool("log-json", false, "Log as JSON")
	pf.String("linker", "", "Block linker: heuristic or structured")
	pf.String("classifier", "", "Definition classifier: regex or treesitter")
}
