package arbitrage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maltedev/keepa-arbitrage/internal/keepa"
	"github.com/maltedev/keepa-arbitrage/internal/models"
)

var (
	// ErrSkip marks an identifier dropped because its home data was unusable.
	ErrSkip = errors.New("arbitrage: identifier skipped")
	// ErrNotQualified marks an identifier no foreign marketplace undercut.
	ErrNotQualified = errors.New("arbitrage: no marketplace cleared the spread")
)

// ProductFetcher is satisfied by *keepa.Client.
type ProductFetcher interface {
	Product(ctx context.Context, asin string, domain int) (*keepa.ProductResponse, error)
}

type Config struct {
	Home    models.Marketplace
	Foreign []models.Marketplace
	// Spread is compared in raw listing units; prices are not FX converted.
	Spread float64
	Markup float64
}

func DefaultConfig(spread, markup float64) Config {
	return Config{
		Home:    models.UK,
		Foreign: models.EuropeanMarketplaces(),
		Spread:  spread,
		Markup:  markup,
	}
}

// Qualifies reports whether home is more than spread above foreign.
func Qualifies(home, foreign, spread float64) bool {
	return home > foreign+spread
}

type Evaluator struct {
	fetcher ProductFetcher
	cfg     Config
	logger  *slog.Logger
}

func NewEvaluator(fetcher ProductFetcher, cfg Config, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger.With("component", "evaluator"),
	}
}

// Evaluate prices one ASIN on the home marketplace and every foreign one.
// It returns a record only when at least one foreign price qualifies;
// otherwise the error wraps ErrSkip or ErrNotQualified.
func (e *Evaluator) Evaluate(ctx context.Context, asin string) (*models.ProductRecord, error) {
	home := e.cfg.Home

	homeData, err := e.fetcher.Product(ctx, asin, home.Domain)
	if err != nil {
		e.logger.Warn("failed to fetch home data", "asin", asin, "market", home.Code, "error", err)
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrSkip, home.Code, err)
	}

	homePrice, err := keepa.CurrentNewPrice(homeData)
	if err != nil {
		e.logger.Warn("failed to extract home price", "asin", asin, "market", home.Code, "error", err)
		return nil, fmt.Errorf("%w: extract %s: %v", ErrSkip, home.Code, err)
	}
	if !keepa.ValidPrice(homePrice) {
		e.logger.Warn("no valid home price", "asin", asin, "market", home.Code, "price", homePrice)
		return nil, fmt.Errorf("%w: %s price %.2f", ErrSkip, home.Code, homePrice)
	}

	e.logger.Info("home price", "asin", asin, "market", home.Code, "price", homePrice)

	record := models.NewProductRecord(asin, home, homePrice, e.cfg.Markup, keepa.SalesRankCurrent(homeData))

	for _, market := range e.cfg.Foreign {
		if market.Code == home.Code {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := e.fetcher.Product(ctx, asin, market.Domain)
		if err != nil {
			e.logger.Warn("failed to fetch market data", "asin", asin, "market", market.Code, "error", err)
			continue
		}

		price, err := keepa.CurrentNewPrice(data)
		if err != nil || !keepa.ValidPrice(price) {
			e.logger.Warn("failed to extract market price", "asin", asin, "market", market.Code, "price", price, "error", err)
			continue
		}

		e.logger.Info("market price", "asin", asin, "market", market.Code, "price", price)

		if Qualifies(homePrice, price, e.cfg.Spread) {
			e.logger.Info("significant price difference",
				"asin", asin,
				"market", market.Code,
				"home_price", homePrice,
				"market_price", price,
			)
			record.AddMarket(market.Code, price)
		}
	}

	if !record.Qualified() {
		return nil, ErrNotQualified
	}

	if problems := record.Validate(); len(problems) > 0 {
		e.logger.Warn("dropping invalid record", "asin", asin, "problems", problems)
		return nil, fmt.Errorf("%w: invalid record: %s", ErrSkip, strings.Join(problems, ", "))
	}

	return record, nil
}
