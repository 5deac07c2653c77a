package research

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/eol-research/internal/model"
)

// Progress is one incremental batch event, suitable for streaming to a UI.
type Progress struct {
	Processed        int    `json:"processed"`
	Total            int    `json:"total"`
	CurrentProductID string `json:"currentProductId"`
	Success          int    `json:"success"`
	Failed           int    `json:"failed"`
	DatesFound       int    `json:"datesFoundSoFar"`
}

// ProgressFunc receives a Progress event after each completed product.
// Called from worker goroutines under a lock; keep it fast.
type ProgressFunc func(Progress)

// ResearchBatch researches products concurrently with a bounded worker
// pool. Results come back in input order. One bad product never aborts the
// batch; the returned error is non-nil only when the whole batch is
// canceled.
func (o *Orchestrator) ResearchBatch(ctx context.Context, queries []model.ProductQuery, concurrency int, progress ProgressFunc) ([]model.Result, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	runID := uuid.New().String()
	zap.L().Info("research: batch starting",
		zap.String("run_id", runID),
		zap.Int("products", len(queries)),
		zap.Int("concurrency", concurrency),
	)

	results := make([]model.Result, len(queries))

	var (
		mu        sync.Mutex
		processed int
		success   int
		failed    int
		found     int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, pq := range queries {
		g.Go(func() error {
			res, err := o.Research(gctx, pq)
			if err != nil {
				// Cancellation: record the error result and stop the pool.
				results[i] = res
				return err
			}
			results[i] = res

			mu.Lock()
			processed++
			if res.Status == model.StatusError {
				failed++
			} else {
				success++
			}
			if res.Status == model.StatusFound {
				found++
			}
			if progress != nil {
				progress(Progress{
					Processed:        processed,
					Total:            len(queries),
					CurrentProductID: pq.ProductID,
					Success:          success,
					Failed:           failed,
					DatesFound:       found,
				})
			}
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	zap.L().Info("research: batch done",
		zap.String("run_id", runID),
		zap.Int("processed", processed),
		zap.Int("success", success),
		zap.Int("failed", failed),
		zap.Int("dates_found", found),
	)
	return results, err
}
