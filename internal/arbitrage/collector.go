package arbitrage

import (
	"context"
	"errors"

	"github.com/maltedev/keepa-arbitrage/internal/models"
)

// Result is the outcome of one pass over the candidate list.
type Result struct {
	Records   []models.ProductRecord
	Processed int
	Skipped   int
	Rejected  int
}

// Collect evaluates asins one at a time, in order, and keeps the qualified
// records. Per-ASIN failures are counted and never stop the loop; only a
// cancelled context does.
func (e *Evaluator) Collect(ctx context.Context, asins []string) (*Result, error) {
	result := &Result{Records: make([]models.ProductRecord, 0)}

	for i, asin := range asins {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e.logger.Info("processing asin", "asin", asin, "position", i+1, "of", len(asins))
		result.Processed++

		record, err := e.Evaluate(ctx, asin)
		switch {
		case err == nil:
			result.Records = append(result.Records, *record)
		case errors.Is(err, ErrNotQualified):
			result.Rejected++
		case errors.Is(err, ErrSkip):
			result.Skipped++
		default:
			return result, err
		}
	}

	return result, nil
}
