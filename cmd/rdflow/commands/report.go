package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/l3aro/rdflow/internal/log"
	"github.com/l3aro/rdflow/pkg/analysis"
	"github.com/l3aro/rdflow/pkg/report"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <path>...",
	Short: "Write Markdown and Graphviz reports for C files",
	Long: `Analyses every C file given, in parallel, and writes into the output
directory one Markdown report and one Graphviz .dot file per program plus a
README.md summarising the metrics of all of them. Unchanged files are served
from the result cache.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, _ := cmd.Flags().GetString("output")
		if outDir == "" {
			outDir = appConfig.OutputDir
		}
		noCache, _ := cmd.Flags().GetBool("no-cache")

		paths, err := collect(args)
		if err != nil {
			return err
		}

		var spinner *log.ProgressSpinner
		if log.IsTTY() && !appConfig.LogJSON {
			spinner = log.NewProgressSpinner(os.Stderr, "Analysing "+strconv.Itoa(len(paths))+" file(s)")
			spinner.Start()
		}
		progress := func(done, total int, r *analysis.Result) {
			if spinner != nil {
				spinner.Message(fmt.Sprintf("Analysed %d/%d: %s", done, total, r.Name))
			}
		}

		start := time.Now()
		p, rc := newPipeline(!noCache)
		results, err := p.Batch(cmd.Context(), paths, progress)
		if spinner != nil {
			spinner.Stop()
		}
		if err != nil {
			return err
		}
		if rc != nil {
			if err := rc.Save(); err != nil {
				logger.Warn("could not save cache", "error", err)
			}
			stats := rc.Stats()
			logger.Debug("cache", "hits", stats.Hits, "misses", stats.Misses, "entries", rc.Len())
		}

		if err := writeReports(outDir, paths, results); err != nil {
			return err
		}

		var bytes uint64
		for _, r := range results {
			bytes += uint64(r.Bytes)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d report(s) to %s (%s analysed in %s)\n",
			len(results), outDir, humanize.Bytes(bytes), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

// writeReports writes <name>.md and <name>.dot for every result and the
// README.md summary.
func writeReports(dir string, paths []string, results []*analysis.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	names := reportNames(paths)
	for i, r := range results {
		if err := writeFile(filepath.Join(dir, names[i]+".md"), report.Markdown(r)); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(dir, names[i]+".dot"), report.DOT(r.CFG)); err != nil {
			return err
		}
		logger.Debug("wrote report", "file", r.Name, "name", names[i])
	}
	return writeFile(filepath.Join(dir, "README.md"), report.Summary(results))
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// reportNames derives one output base name per path from the file name
// without its extension. Repeated names get a numeric suffix.
func reportNames(paths []string) []string {
	names := make([]string, len(paths))
	seen := make(map[string]int)
	for i, p := range paths {
		name := "stdin"
		if p != analysis.StdinName {
			base := filepath.Base(p)
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		if strings.EqualFold(name, "README") {
			name += "_program"
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name += "-" + strconv.Itoa(n)
		}
		names[i] = name
	}
	return names
}

func init() {
	reportCmd.Flags().StringP("output", "o", "", "Output directory (default from config output_dir)")
	reportCmd.Flags().Bool("no-cache", false, "Analyse every file even if a cached result exists")
	RootCmd.AddCommand(reportCmd)
}
