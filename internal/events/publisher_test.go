package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/keepa-arbitrage/internal/arbitrage"
	"github.com/maltedev/keepa-arbitrage/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRedisClient is a mock for Redis client
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd {
	mockArgs := m.Called(ctx, args)
	cmd := redis.NewStringCmd(ctx)
	if err := mockArgs.Error(0); err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal("1234567890-0")
	}
	return cmd
}

func testRun() *arbitrage.Run {
	return &arbitrage.Run{
		ID:      uuid.MustParse("6f1f3c2e-8d4b-4c1a-9a55-0c3a1f2b7e10"),
		Keyword: "Weber",
	}
}

func testRecords() []models.ProductRecord {
	rank := 5
	a := models.NewProductRecord("A", models.UK, 120, 1.2, &rank)
	a.AddMarket("DE", 100)
	b := models.NewProductRecord("B", models.UK, 80, 1.2, nil)
	b.AddMarket("IT", 70)
	return []models.ProductRecord{*a, *b}
}

func TestPublisher_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("one stream entry per record", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		var published []*redis.XAddArgs
		mockRedis.On("XAdd", ctx, mock.AnythingOfType("*redis.XAddArgs")).
			Run(func(args mock.Arguments) {
				published = append(published, args.Get(1).(*redis.XAddArgs))
			}).
			Return(nil)

		publisher := NewPublisher(mockRedis, "stream:price_arbitrage", slog.Default())
		publisher.now = func() time.Time { return time.Unix(1700000000, 0) }

		err := publisher.Publish(ctx, testRun(), testRecords())
		require.NoError(t, err)

		require.Len(t, published, 2)
		first := published[0]
		assert.Equal(t, "stream:price_arbitrage", first.Stream)

		values := first.Values.(map[string]interface{})
		assert.Equal(t, "PRICE_GAP_DETECTED", values["type"])
		assert.Equal(t, "A", values["asin"])
		assert.Equal(t, "6f1f3c2e-8d4b-4c1a-9a55-0c3a1f2b7e10", values["run_id"])

		var payload PriceGapDetectedPayload
		require.NoError(t, json.Unmarshal([]byte(values["data"].(string)), &payload))
		assert.Equal(t, "A", payload.ASIN)
		assert.Equal(t, "Weber", payload.Keyword)
		assert.Equal(t, 120.0, payload.HomePrice)
		assert.Equal(t, map[string]float64{"DE": 100}, payload.MarketPrices)
		require.NotNil(t, payload.SalesRank)
		assert.Equal(t, 5, *payload.SalesRank)
		_, err = uuid.Parse(payload.EventID)
		assert.NoError(t, err)

		mockRedis.AssertNumberOfCalls(t, "XAdd", 2)
	})

	t.Run("no records publishes nothing", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		publisher := NewPublisher(mockRedis, "stream:price_arbitrage", slog.Default())

		require.NoError(t, publisher.Publish(ctx, testRun(), nil))
		mockRedis.AssertNotCalled(t, "XAdd", mock.Anything, mock.Anything)
	})

	t.Run("redis failure stops publishing", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		mockRedis.On("XAdd", ctx, mock.Anything).Return(errors.New("connection refused"))

		publisher := NewPublisher(mockRedis, "stream:price_arbitrage", slog.Default())

		err := publisher.Publish(ctx, testRun(), testRecords())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		mockRedis.AssertNumberOfCalls(t, "XAdd", 1)
	})
}
