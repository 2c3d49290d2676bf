package main

import (
	"context"
	"log/slog"

	"github.com/maltedev/keepa-arbitrage/internal/arbitrage"
	"github.com/maltedev/keepa-arbitrage/internal/config"
	"github.com/maltedev/keepa-arbitrage/internal/database"
	"github.com/maltedev/keepa-arbitrage/internal/events"
	"github.com/redis/go-redis/v9"
)

// buildSinks connects the configured optional sinks. A sink that cannot be
// reached is logged and left out; the run still writes its results file.
// The returned cleanup closes every connection that was opened.
func buildSinks(ctx context.Context, cfg *config.Config, log *slog.Logger) ([]arbitrage.Sink, func()) {
	var sinks []arbitrage.Sink
	var closers []func()

	if cfg.Database.URL != "" {
		if store, closeDB, err := postgresSink(ctx, cfg); err != nil {
			log.Warn("postgres sink disabled", "error", err)
		} else {
			sinks = append(sinks, store)
			closers = append(closers, closeDB)
		}
	}

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis sink disabled", "addr", cfg.Redis.Addr, "error", err)
			redisClient.Close()
		} else {
			sinks = append(sinks, events.NewPublisher(redisClient, cfg.Redis.Stream, log))
			closers = append(closers, func() { redisClient.Close() })
		}
	}

	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}

func postgresSink(ctx context.Context, cfg *config.Config) (*database.OpportunityStore, func(), error) {
	db, err := database.New(ctx, database.Config{URL: cfg.Database.URL, MaxConns: 2})
	if err != nil {
		return nil, nil, err
	}

	store := database.NewOpportunityStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	return store, db.Close, nil
}
