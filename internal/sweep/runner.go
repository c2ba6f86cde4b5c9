package sweep

import (
	"context"
	"log"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"divergence-lab/internal/domain"
	"divergence-lab/internal/engine"
)

// Summary holds the aggregate results of one configuration's run.
type Summary struct {
	ConfigID string
	Config   domain.Config

	Total   int
	Filled  int
	Wins    int
	Losses  int
	Expired int

	WinRate              float64 // fraction in [0, 1]
	TotalPnL             float64
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int

	Score float64
}

// RunnerOptions configures a sweep Runner.
type RunnerOptions struct {
	// Workers caps concurrent backtests. 0 means GOMAXPROCS.
	Workers int
	Verbose bool
}

// Runner fans a set of configurations out over a worker pool. Each run
// reads the shared candle slices and writes only its own results, so
// runs never contend.
type Runner struct {
	workers int
	verbose bool
}

// NewRunner creates a sweep runner.
func NewRunner(opts RunnerOptions) *Runner {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{workers: workers, verbose: opts.Verbose}
}

// Run executes one backtest per configuration and returns summaries
// sorted by score descending (config ID ascending on ties). Candle
// slices are treated as read-only. Returns the context error if
// cancelled between runs; runs already started are completed.
func (r *Runner) Run(ctx context.Context, configs []domain.Config, target, reference []*domain.Candle) ([]Summary, error) {
	summaries := make([]Summary, len(configs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, cfg := range configs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			summaries[i] = runOne(cfg, target, reference)
			r.log("completed %s: score=%.2f filled=%d pnl=%.2f",
				summaries[i].ConfigID, summaries[i].Score, summaries[i].Filled, summaries[i].TotalPnL)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Score != summaries[j].Score {
			return summaries[i].Score > summaries[j].Score
		}
		return summaries[i].ConfigID < summaries[j].ConfigID
	})
	return summaries, nil
}

func runOne(cfg domain.Config, target, reference []*domain.Candle) Summary {
	results := engine.NewSetupEngine(cfg).Run(target, reference)

	s := Summary{
		ConfigID:             cfg.ID(),
		Config:               cfg,
		Total:                results.Total(),
		Filled:               len(results.FilledSetups()),
		Wins:                 results.Wins(),
		Losses:               results.Losses(),
		Expired:              results.Expired(),
		WinRate:              results.WinRate(),
		TotalPnL:             results.TotalPnL(),
		MaxConsecutiveWins:   results.MaxConsecutiveWins(),
		MaxConsecutiveLosses: results.MaxConsecutiveLosses(),
	}
	s.Score = Score(s.WinRate, s.TotalPnL, s.Filled)
	return s
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.verbose {
		log.Printf("[sweep] "+format, args...)
	}
}
