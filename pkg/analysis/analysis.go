// Package analysis runs the CFG builder and the reaching definitions solver
// over C sources, one file at a time or in parallel batches, and caches the
// results by content.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/l3aro/rdflow/internal/log"
	"github.com/l3aro/rdflow/pkg/cfg"
	"github.com/l3aro/rdflow/pkg/dfg"
)

// StdinName is the path argument that reads the source from standard input.
const StdinName = "-"

// ErrNotRegularFile is returned when a path names a directory or device.
var ErrNotRegularFile = errors.New("not a regular file")

// Options selects the algorithms used for one analysis. Every field takes
// part in the cache key.
type Options struct {
	Linker     cfg.LinkMode       `json:"linker"`
	Classifier dfg.ClassifierKind `json:"classifier"`
	MaxRounds  int                `json:"max_rounds"`
}

// DefaultOptions returns the heuristic linker, the regex classifier and
// the default round cap.
func DefaultOptions() Options {
	return Options{
		Linker:     cfg.LinkHeuristic,
		Classifier: dfg.ClassifierRegex,
		MaxRounds:  dfg.DefaultMaxRounds,
	}
}

// Result is the complete analysis of one source text.
type Result struct {
	Name     string            `json:"name"`
	Bytes    int               `json:"bytes"`
	CFG      *cfg.CFG          `json:"cfg"`
	Metrics  cfg.Metrics       `json:"metrics"`
	Reaching *dfg.ReachingDefs `json:"reaching_definitions"`
	Elapsed  time.Duration     `json:"elapsed"`
	Cached   bool              `json:"cached" msgpack:"-"`
}

// Pipeline analyses sources with a fixed set of Options.
// It is safe for concurrent use; each call builds fresh builders,
// classifiers and solvers.
type Pipeline struct {
	opts     Options
	parallel int
	cache    *ResultCache
	stdin    io.Reader
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache enables result caching.
func WithCache(c *ResultCache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// WithParallel sets how many files Batch analyses at once.
func WithParallel(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.parallel = n
		}
	}
}

// WithStdin replaces os.Stdin as the source for the "-" path.
func WithStdin(r io.Reader) Option {
	return func(p *Pipeline) {
		p.stdin = r
	}
}

// New creates a Pipeline. Zero fields of opts fall back to DefaultOptions.
func New(opts Options, options ...Option) *Pipeline {
	d := DefaultOptions()
	if opts.Linker == "" {
		opts.Linker = d.Linker
	}
	if opts.Classifier == "" {
		opts.Classifier = d.Classifier
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = d.MaxRounds
	}

	p := &Pipeline{opts: opts, parallel: 1, stdin: os.Stdin}
	for _, o := range options {
		o(p)
	}
	return p
}

// Options returns the options the pipeline was created with.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Analyze builds the CFG of src and solves reaching definitions over it.
// name is only used for labelling the result.
func (p *Pipeline) Analyze(ctx context.Context, name, src string) *Result {
	logger := log.FromContext(ctx)

	var key string
	if p.cache != nil {
		key = p.cache.Key(src, p.opts)
	}
	if key != "" {
		if hit, ok := p.cache.Get(key); ok {
			logger.Debug("analysis cache hit", "file", name)
			r := *hit
			r.Name = name
			r.Cached = true
			return &r
		}
	}

	start := time.Now()
	g := cfg.NewBuilder(cfg.WithLinkMode(p.opts.Linker)).Build(src)

	classifier := dfg.NewClassifier(p.opts.Classifier)
	if c, ok := classifier.(interface{ Close() }); ok {
		defer c.Close()
	}
	rd := dfg.NewReachingDefsAnalyzer(
		dfg.WithClassifier(classifier),
		dfg.WithMaxRounds(p.opts.MaxRounds),
		dfg.WithLogger(logger),
	).Analyze(g)

	r := &Result{
		Name:     name,
		Bytes:    len(src),
		CFG:      g,
		Metrics:  g.Metrics(),
		Reaching: rd,
		Elapsed:  time.Since(start),
	}
	logger.Debug("analysed source",
		"file", name,
		"blocks", r.Metrics.Nodes,
		"definitions", len(rd.Definitions),
		"rounds", rd.Iterations,
	)

	if key != "" {
		p.cache.Set(key, r)
	}
	return r
}

// AnalyzeFile reads path and analyses it. The path "-" reads standard input.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if path == StdinName {
		data, err := io.ReadAll(p.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return p.Analyze(ctx, "stdin", string(data)), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("reading file %s: %w", path, ErrNotRegularFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return p.Analyze(ctx, filepath.Base(path), string(data)), nil
}
