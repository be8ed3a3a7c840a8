// internal/favicon/batch.go
package favicon

import (
    "context"
    "time"

    "golang.org/x/sync/errgroup"
)

// DefaultBatchWorkers bounds concurrent resolutions in ResolveAll.
const DefaultBatchWorkers = 4

// BatchItem is the outcome for one URL of a batch.
type BatchItem struct {
    URL     string  `json:"url"`
    Result  *Result `json:"result,omitempty"`
    Outcome string  `json:"outcome"`
    Error   string  `json:"error,omitempty"`
    Err     error   `json:"-"`

    Duration time.Duration `json:"-"`
}

// ResolveAll resolves urls on at most workers goroutines. A failing URL does
// not stop the others; items come back in input order.
func (r *Resolver) ResolveAll(ctx context.Context, urls []string, opts FetchOptions, workers int) []BatchItem {
    if workers <= 0 {
        workers = DefaultBatchWorkers
    }

    items := make([]BatchItem, len(urls))

    g, gctx := errgroup.WithContext(ctx)
    g.SetLimit(workers)

    for i, u := range urls {
        i, u := i, u
        g.Go(func() error {
            start := time.Now()
            result, err := r.Resolve(gctx, u, opts)
            items[i] = BatchItem{
                URL:      u,
                Result:   result,
                Outcome:  Outcome(err),
                Err:      err,
                Duration: time.Since(start),
            }
            if err != nil {
                items[i].Error = err.Error()
            }
            return nil
        })
    }

    _ = g.Wait()
    return items
}
