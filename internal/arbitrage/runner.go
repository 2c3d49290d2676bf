package arbitrage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/keepa-arbitrage/internal/models"
)

// CandidateLister is satisfied by *keepa.Client.
type CandidateLister interface {
	FindProducts(ctx context.Context, keyword string, domain, limit int) ([]string, error)
}

// ResultWriter persists the selected products. The file it writes is the
// primary output of a run.
type ResultWriter interface {
	Save(records []models.ProductRecord) error
	Path() string
}

// Sink receives a copy of the results after the file was written.
type Sink interface {
	Name() string
	Publish(ctx context.Context, run *Run, records []models.ProductRecord) error
}

// Run describes one execution of the pipeline.
type Run struct {
	ID         uuid.UUID `json:"id"`
	Keyword    string    `json:"keyword"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Candidates int       `json:"candidates"`
	Processed  int       `json:"processed"`
	Selected   int       `json:"selected"`
	Skipped    int       `json:"skipped"`
	Rejected   int       `json:"rejected"`
	OutputPath string    `json:"output_path"`
}

type RunnerConfig struct {
	Keyword     string
	MaxProducts int
}

type Runner struct {
	lister    CandidateLister
	evaluator *Evaluator
	writer    ResultWriter
	sinks     []Sink
	cfg       RunnerConfig
	logger    *slog.Logger
}

func NewRunner(lister CandidateLister, evaluator *Evaluator, writer ResultWriter, cfg RunnerConfig, logger *slog.Logger, sinks ...Sink) *Runner {
	return &Runner{
		lister:    lister,
		evaluator: evaluator,
		writer:    writer,
		sinks:     sinks,
		cfg:       cfg,
		logger:    logger.With("component", "runner"),
	}
}

// Run executes the whole pipeline once. Any returned error is fatal for the
// run: candidate listing failed or came back empty, the context was
// cancelled, or the results file could not be written.
func (r *Runner) Run(ctx context.Context) (*Run, []models.ProductRecord, error) {
	run := &Run{
		ID:         uuid.New(),
		Keyword:    r.cfg.Keyword,
		StartedAt:  time.Now(),
		OutputPath: r.writer.Path(),
	}
	logger := r.logger.With("run_id", run.ID.String())

	logger.Info("starting run", "keyword", r.cfg.Keyword, "max_products", r.cfg.MaxProducts)

	asins, err := r.lister.FindProducts(ctx, r.cfg.Keyword, r.evaluator.cfg.Home.Domain, r.cfg.MaxProducts)
	if err != nil {
		return run, nil, fmt.Errorf("failed to list candidates for %q: %w", r.cfg.Keyword, err)
	}
	if len(asins) > r.cfg.MaxProducts {
		asins = asins[:r.cfg.MaxProducts]
	}
	run.Candidates = len(asins)

	logger.Info("fetched candidates", "count", len(asins))

	result, err := r.evaluator.Collect(ctx, asins)
	if err != nil {
		return run, nil, fmt.Errorf("run interrupted: %w", err)
	}

	run.Processed = result.Processed
	run.Selected = len(result.Records)
	run.Skipped = result.Skipped
	run.Rejected = result.Rejected

	if err := r.writer.Save(result.Records); err != nil {
		return run, result.Records, fmt.Errorf("failed to write results: %w", err)
	}
	run.FinishedAt = time.Now()

	logger.Info("run completed",
		"selected", run.Selected,
		"processed", run.Processed,
		"skipped", run.Skipped,
		"rejected", run.Rejected,
		"output", run.OutputPath,
		"duration", run.FinishedAt.Sub(run.StartedAt),
	)

	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, run, result.Records); err != nil {
			logger.Error("failed to publish results", "sink", sink.Name(), "error", err)
			continue
		}
		logger.Info("results published", "sink", sink.Name(), "count", len(result.Records))
	}

	return run, result.Records, nil
}
