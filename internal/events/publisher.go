package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/keepa-arbitrage/internal/arbitrage"
	"github.com/maltedev/keepa-arbitrage/internal/models"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypePriceGapDetected is published once per selected product
	EventTypePriceGapDetected EventType = "PRICE_GAP_DETECTED"
)

// PriceGapDetectedPayload is the data field of a PRICE_GAP_DETECTED entry.
type PriceGapDetectedPayload struct {
	EventID      string             `json:"event_id"`
	EventType    string             `json:"event_type"`
	Timestamp    time.Time          `json:"timestamp"`
	RunID        string             `json:"run_id"`
	Keyword      string             `json:"keyword"`
	ASIN         string             `json:"asin"`
	HomePrice    float64            `json:"home_price"`
	SalePrice    float64            `json:"sale_price"`
	ROI          float64            `json:"roi"`
	SalesRank    *int               `json:"sales_rank,omitempty"`
	PurchaseLink string             `json:"purchase_link"`
	KeepaLink    string             `json:"keepa_link"`
	MarketPrices map[string]float64 `json:"market_prices"`
	Source       string             `json:"source"`
}

// RedisClient interface for Redis operations (for testing)
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// Publisher appends selected products to a Redis stream.
type Publisher struct {
	redis  RedisClient
	stream string
	logger *slog.Logger
	now    func() time.Time
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		redis:  client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
		now:    time.Now,
	}
}

func (p *Publisher) Name() string {
	return "redis"
}

// Publish adds one stream entry per record. It stops at the first failed
// XADD; entries already added stay in the stream.
func (p *Publisher) Publish(ctx context.Context, run *arbitrage.Run, records []models.ProductRecord) error {
	for _, record := range records {
		payload := NewPriceGapDetected(run, record, p.now())

		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}

		args := &redis.XAddArgs{
			Stream: p.stream,
			Values: map[string]interface{}{
				"data":      string(data),
				"type":      payload.EventType,
				"event_id":  payload.EventID,
				"run_id":    payload.RunID,
				"asin":      payload.ASIN,
				"timestamp": fmt.Sprintf("%d", payload.Timestamp.UnixNano()),
			},
		}

		id, err := p.redis.XAdd(ctx, args).Result()
		if err != nil {
			return fmt.Errorf("failed to publish %s to redis: %w", record.ASIN, err)
		}

		p.logger.Debug("event published",
			"type", payload.EventType,
			"event_id", payload.EventID,
			"asin", payload.ASIN,
			"stream_id", id,
		)
	}

	return nil
}

func NewPriceGapDetected(run *arbitrage.Run, record models.ProductRecord, ts time.Time) *PriceGapDetectedPayload {
	return &PriceGapDetectedPayload{
		EventID:      uuid.New().String(),
		EventType:    string(EventTypePriceGapDetected),
		Timestamp:    ts,
		RunID:        run.ID.String(),
		Keyword:      run.Keyword,
		ASIN:         record.ASIN,
		HomePrice:    record.BuyBox,
		SalePrice:    record.SalePrice,
		ROI:          record.ROI,
		SalesRank:    record.SalesPerMonth,
		PurchaseLink: record.PurchaseLink,
		KeepaLink:    record.KeepaLink,
		MarketPrices: record.Market,
		Source:       "keepa-arbitrage",
	}
}

var _ arbitrage.Sink = (*Publisher)(nil)
