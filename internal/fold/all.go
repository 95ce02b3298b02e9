package fold

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sitproject/sit/internal/storage"
)

// All folds every issue in ids concurrently, at most workers at a time
// (workers <= 0 means GOMAXPROCS). Results are returned in the order of ids.
// Each issue is folded sequentially by its own run; runs share nothing but
// the Folder. The first failing run cancels the others.
func All(ctx context.Context, f Folder, src storage.Source, ids []string, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]*Result, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range ids {
		g.Go(func() error {
			res, err := f.Fold(ctx, id, src.Records(ctx, id))
			if err != nil {
				return fmt.Errorf("folding %s: %w", id, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
