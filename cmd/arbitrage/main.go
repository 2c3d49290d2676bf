package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maltedev/keepa-arbitrage/internal/arbitrage"
	"github.com/maltedev/keepa-arbitrage/internal/config"
	"github.com/maltedev/keepa-arbitrage/internal/keepa"
	"github.com/maltedev/keepa-arbitrage/internal/logger"
	"github.com/maltedev/keepa-arbitrage/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	if cfg.HasPlaceholderKey() {
		log.Warn("KEEPA_API_KEY is not set, every Keepa call will fail authentication")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutdown signal received")
		cancel()
	}()

	client := keepa.NewClient(cfg.Keepa.APIKey, cfg.Keepa.BaseURL, log)
	store := storage.NewResultStore(cfg.Output.Dir, cfg.Arbitrage.Keyword)

	sinks, closeSinks := buildSinks(ctx, cfg, log)
	defer closeSinks()

	evaluator := arbitrage.NewEvaluator(client, arbitrage.DefaultConfig(cfg.Arbitrage.PriceSpread, cfg.Arbitrage.Markup), log)
	runner := arbitrage.NewRunner(client, evaluator, store, arbitrage.RunnerConfig{
		Keyword:     cfg.Arbitrage.Keyword,
		MaxProducts: cfg.Arbitrage.MaxProducts,
	}, log, sinks...)

	run, records, err := runner.Run(ctx)
	if err != nil {
		log.Error("run failed, giving up", "keyword", cfg.Arbitrage.Keyword, "error", err)
		os.Exit(1)
	}

	fmt.Println("Selected products with significant price differences:")
	for _, record := range records {
		out, err := json.MarshalIndent(record, "", "    ")
		if err != nil {
			log.Error("failed to render product", "asin", record.ASIN, "error", err)
			continue
		}
		fmt.Println(string(out))
	}

	log.Info("results written", "run_id", run.ID.String(), "file", run.OutputPath, "selected", run.Selected)
}
