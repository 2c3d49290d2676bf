package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/maltedev/keepa-arbitrage/internal/arbitrage"
	"github.com/maltedev/keepa-arbitrage/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS arbitrage_runs (
	id          UUID PRIMARY KEY,
	keyword     TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	candidates  INTEGER NOT NULL,
	processed   INTEGER NOT NULL,
	selected    INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	rejected    INTEGER NOT NULL,
	output_path TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS arbitrage_opportunities (
	run_id          UUID NOT NULL REFERENCES arbitrage_runs(id) ON DELETE CASCADE,
	asin            TEXT NOT NULL,
	market          TEXT NOT NULL,
	home_price      NUMERIC(12,2) NOT NULL,
	market_price    NUMERIC(12,2) NOT NULL,
	sale_price      NUMERIC(12,2) NOT NULL,
	roi             NUMERIC(8,2) NOT NULL,
	sales_rank      INTEGER,
	purchase_link   TEXT NOT NULL,
	PRIMARY KEY (run_id, asin, market)
);`

// Opportunity is one (product, marketplace) pair that cleared the spread.
type Opportunity struct {
	ASIN         string
	Market       string
	HomePrice    float64
	MarketPrice  float64
	SalePrice    float64
	ROI          float64
	SalesRank    *int
	PurchaseLink string
}

// Opportunities flattens records into one row per qualifying marketplace,
// ordered by record then market code.
func Opportunities(records []models.ProductRecord) []Opportunity {
	var rows []Opportunity
	for _, r := range records {
		markets := make([]string, 0, len(r.Market))
		for code := range r.Market {
			markets = append(markets, code)
		}
		sort.Strings(markets)

		for _, code := range markets {
			rows = append(rows, Opportunity{
				ASIN:         r.ASIN,
				Market:       code,
				HomePrice:    r.BuyBox,
				MarketPrice:  r.Market[code],
				SalePrice:    r.SalePrice,
				ROI:          r.ROI,
				SalesRank:    r.SalesPerMonth,
				PurchaseLink: r.PurchaseLink,
			})
		}
	}
	return rows
}

// OpportunityStore archives run results in Postgres. It implements
// arbitrage.Sink; nothing it writes is read back by the pipeline.
type OpportunityStore struct {
	db *DB
}

func NewOpportunityStore(db *DB) *OpportunityStore {
	return &OpportunityStore{db: db}
}

func (s *OpportunityStore) Name() string {
	return "postgres"
}

func (s *OpportunityStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *OpportunityStore) Publish(ctx context.Context, run *arbitrage.Run, records []models.ProductRecord) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO arbitrage_runs (
				id, keyword, started_at, finished_at, candidates,
				processed, selected, skipped, rejected, output_path
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			run.ID, run.Keyword, run.StartedAt, run.FinishedAt, run.Candidates,
			run.Processed, run.Selected, run.Skipped, run.Rejected, run.OutputPath,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		batch := &pgx.Batch{}
		for _, o := range Opportunities(records) {
			batch.Queue(`
				INSERT INTO arbitrage_opportunities (
					run_id, asin, market, home_price, market_price,
					sale_price, roi, sales_rank, purchase_link
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				run.ID, o.ASIN, o.Market, o.HomePrice, o.MarketPrice,
				o.SalePrice, o.ROI, o.SalesRank, o.PurchaseLink,
			)
		}

		if batch.Len() == 0 {
			return nil
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert opportunities: %w", err)
		}

		return nil
	})
}

var _ arbitrage.Sink = (*OpportunityStore)(nil)
