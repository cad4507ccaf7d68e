package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSources(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("p%02d.c", i))
		// file i defines i+1 variables
		var src string
		for v := 0; v <= i; v++ {
			src += fmt.Sprintf("int v%d = %d;\n", v, v)
		}
		require.NoError(t, os.WriteFile(paths[i], []byte(src), 0644))
	}
	return paths
}

func TestBatchPreservesOrder(t *testing.T) {
	paths := writeSources(t, 12)

	var mu sync.Mutex
	var seen []int
	progress := func(done, total int, r *Result) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, len(paths), total)
		assert.NotNil(t, r)
		seen = append(seen, done)
	}

	results, err := New(DefaultOptions(), WithParallel(4)).Batch(context.Background(), paths, progress)
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	for i, r := range results {
		assert.Equal(t, filepath.Base(paths[i]), r.Name)
		assert.Len(t, r.Reaching.Definitions, i+1)
	}

	require.Len(t, seen, len(paths))
	for i, n := range seen {
		assert.Equal(t, i+1, n, "progress counts up once per file")
	}
}

func TestBatchStopsOnError(t *testing.T) {
	paths := writeSources(t, 3)
	paths = append(paths, filepath.Join(t.TempDir(), "missing.c"))

	results, err := New(DefaultOptions(), WithParallel(2)).Batch(context.Background(), paths, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, results)
}

func TestBatchEmpty(t *testing.T) {
	results, err := New(DefaultOptions()).Batch(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
