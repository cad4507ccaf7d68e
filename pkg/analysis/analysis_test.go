package analysis

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/l3aro/rdflow/pkg/cfg"
	"github.com/l3aro/rdflow/pkg/dfg"
)

const ifElseSource = `int x = 1;
if (x > 0) {
    x = 2;
} else {
    x = 3;
}
return x;
`

// readCase splits a txtar case into its linker, source and expectations.
func readCase(t *testing.T, path string) (cfg.LinkMode, string, map[string]string) {
	t.Helper()
	ar, err := txtar.ParseFile(path)
	require.NoError(t, err)

	mode := cfg.LinkHeuristic
	for _, line := range strings.Split(string(ar.Comment), "\n") {
		if v, ok := strings.CutPrefix(line, "linker:"); ok {
			mode, err = cfg.ParseLinkMode(v)
			require.NoError(t, err)
		}
	}

	var src string
	want := make(map[string]string)
	for _, f := range ar.Files {
		switch f.Name {
		case "input.c":
			src = string(f.Data)
		case "want":
			for _, line := range strings.Split(strings.TrimSpace(string(f.Data)), "\n") {
				k, v, ok := strings.Cut(line, ":")
				require.True(t, ok, "malformed want line %q", line)
				want[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
		}
	}
	return mode, src, want
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}

func TestCases(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "cases", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(strings.TrimSuffix(filepath.Base(path), ".txtar"), func(t *testing.T) {
			mode, src, want := readCase(t, path)
			for _, kind := range []dfg.ClassifierKind{dfg.ClassifierRegex, dfg.ClassifierTreeSitter} {
				t.Run(string(kind), func(t *testing.T) {
					p := New(Options{Linker: mode, Classifier: kind})
					r := p.Analyze(context.Background(), "input.c", src)

					assert.Equal(t, atoi(t, want["blocks"]), r.Metrics.Nodes, "blocks")
					assert.Equal(t, atoi(t, want["edges"]), r.Metrics.Edges, "edges")
					assert.Equal(t, atoi(t, want["cc"]), r.Metrics.CyclomaticComplexity, "cc")
					assert.Len(t, r.Reaching.Definitions, atoi(t, want["definitions"]), "definitions")
					assert.Equal(t, atoi(t, want["iterations"]), r.Reaching.Iterations, "iterations")
					assert.Equal(t, want["converged"] == "true", r.Reaching.Converged, "converged")

					var kinds []string
					for _, f := range r.Reaching.Findings {
						kinds = append(kinds, string(f.Kind))
					}
					assert.Equal(t, want["findings"], strings.Join(kinds, ", "), "findings")
				})
			}
		})
	}
}

func TestNewFillsDefaults(t *testing.T) {
	p := New(Options{})
	assert.Equal(t, DefaultOptions(), p.Options())

	p = New(Options{Linker: cfg.LinkStructured, MaxRounds: 7})
	assert.Equal(t, Options{Linker: cfg.LinkStructured, Classifier: dfg.ClassifierRegex, MaxRounds: 7}, p.Options())
}

func TestAnalyze(t *testing.T) {
	r := New(Options{Linker: cfg.LinkStructured}).Analyze(context.Background(), "ifelse.c", ifElseSource)

	assert.Equal(t, "ifelse.c", r.Name)
	assert.Equal(t, len(ifElseSource), r.Bytes)
	assert.Equal(t, cfg.LinkStructured, r.CFG.Linker)
	assert.Equal(t, r.CFG.Metrics(), r.Metrics)
	assert.False(t, r.Cached)
	assert.Equal(t, []string{"D2", "D3"}, r.Reaching.In[5].IDs())
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.c")
	require.NoError(t, os.WriteFile(path, []byte(ifElseSource), 0644))

	p := New(DefaultOptions(), WithStdin(strings.NewReader("int y = 2;\n")))
	ctx := context.Background()

	t.Run("regular file", func(t *testing.T) {
		r, err := p.AnalyzeFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "prog.c", r.Name)
		assert.Equal(t, 6, r.Metrics.Nodes)
	})

	t.Run("stdin", func(t *testing.T) {
		r, err := p.AnalyzeFile(ctx, StdinName)
		require.NoError(t, err)
		assert.Equal(t, "stdin", r.Name)
		require.Len(t, r.Reaching.Definitions, 1)
		assert.Equal(t, "y", r.Reaching.Definitions[0].Variable)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := p.AnalyzeFile(ctx, dir)
		assert.ErrorIs(t, err, ErrNotRegularFile)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := p.AnalyzeFile(ctx, filepath.Join(dir, "missing.c"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := p.AnalyzeFile(cctx, path)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
