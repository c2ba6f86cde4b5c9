// Package main runs a parameter sweep: one backtest per grid point over
// a shared pair of candle CSV files, ranked by composite score.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"divergence-lab/internal/dataprep"
	"divergence-lab/internal/domain"
	"divergence-lab/internal/observability"
	"divergence-lab/internal/reporting"
	"divergence-lab/internal/sweep"
)

func main() {
	targetCSV := flag.String("target-csv", "", "Candle CSV for the target asset (required)")
	referenceCSV := flag.String("reference-csv", "", "Candle CSV for the reference asset (required)")
	targetSymbol := flag.String("target-symbol", "ES", "Target asset symbol")
	referenceSymbol := flag.String("reference-symbol", "NQ", "Reference asset symbol")
	outputDir := flag.String("output-dir", "out", "Output directory for generated files")
	workers := flag.Int("workers", 0, "Concurrent backtests (0 = GOMAXPROCS)")
	metricsAddr := flag.String("metrics-addr", "", "Optional address for the Prometheus /metrics endpoint")
	verbose := flag.Bool("verbose", false, "Log each completed configuration")
	flag.Parse()

	if *targetCSV == "" || *referenceCSV == "" {
		fmt.Fprintln(os.Stderr, "Error: --target-csv and --reference-csv are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling sweep...\n", sig)
		cancel()
	}()

	metrics := observability.NewMetrics("")
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
	}

	target, err := dataprep.LoadCandlesCSV(*targetCSV, *targetSymbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading target candles: %v\n", err)
		os.Exit(1)
	}
	reference, err := dataprep.LoadCandlesCSV(*referenceCSV, *referenceSymbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading reference candles: %v\n", err)
		os.Exit(1)
	}

	dataprep.Enrich(target)
	dataprep.Enrich(reference)

	configs := sweep.DefaultGrid().Expand(domain.DefaultConfig())
	metrics.SweepConfigsPending.Set(float64(len(configs)))

	fmt.Printf("=== Parameter Sweep ===\n")
	fmt.Printf("Configurations: %d | Candles: %d/%d\n", len(configs), len(target), len(reference))

	started := time.Now()
	runner := sweep.NewRunner(sweep.RunnerOptions{Workers: *workers, Verbose: *verbose})
	summaries, err := runner.Run(ctx, configs, target, reference)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep error: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(started)

	metrics.SweepConfigsPending.Set(0)
	metrics.SweepDuration.Observe(elapsed.Seconds())
	for _, s := range summaries {
		metrics.SweepConfigsTotal.Inc()
		metrics.RunsTotal.WithLabelValues("ok").Inc()
		metrics.SetupsFilled.Add(float64(s.Filled))
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output dir: %v\n", err)
		os.Exit(1)
	}
	rankingsPath := filepath.Join(*outputDir, "sweep.csv")
	if err := os.WriteFile(rankingsPath, []byte(reporting.RenderSweepCSV(summaries)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", rankingsPath, err)
		os.Exit(1)
	}

	fmt.Printf("Sweep completed in %s:\n", elapsed.Round(time.Millisecond))
	top := summaries
	if len(top) > 5 {
		top = top[:5]
	}
	for i, s := range top {
		fmt.Printf("  #%d %s score=%.2f filled=%d wr=%.4f pnl=%.2f\n",
			i+1, s.ConfigID, s.Score, s.Filled, s.WinRate, s.TotalPnL)
	}
	fmt.Printf("  Wrote %s\n", rankingsPath)
}
