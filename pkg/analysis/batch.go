package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/l3aro/rdflow/internal/log"
)

// Progress is called after each file of a batch finishes.
type Progress func(done, total int, r *Result)

// Batch analyses every path with at most the configured number of files in
// flight. Results are returned in the order of paths. The first read error
// cancels the remaining files and is returned.
func (p *Pipeline) Batch(ctx context.Context, paths []string, progress Progress) ([]*Result, error) {
	logger := log.FromContext(ctx)
	results := make([]*Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallel)

	done := make(chan *Result)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		n := 0
		for r := range done {
			n++
			if progress != nil {
				progress(n, len(paths), r)
			}
		}
	}()

	for i, path := range paths {
		g.Go(func() error {
			r, err := p.AnalyzeFile(ctx, path)
			if err != nil {
				return err
			}
			results[i] = r
			done <- r
			return nil
		})
	}

	err := g.Wait()
	close(done)
	<-finished

	if err != nil {
		logger.Error("batch analysis failed", "error", err)
		return nil, err
	}
	logger.Debug("batch analysis finished", "files", len(paths), "parallel", p.parallel)
	return results, nil
}
