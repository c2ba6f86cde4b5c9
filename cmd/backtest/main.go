// Package main runs a single divergence backtest over a pair of candle
// CSV files and writes the trade log and report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"divergence-lab/internal/dataprep"
	"divergence-lab/internal/domain"
	"divergence-lab/internal/engine"
	"divergence-lab/internal/idhash"
	"divergence-lab/internal/reporting"
	chstore "divergence-lab/internal/storage/clickhouse"
	"divergence-lab/internal/storage/migrations"
	pgstore "divergence-lab/internal/storage/postgres"
)

func main() {
	targetCSV := flag.String("target-csv", "", "Candle CSV for the target asset (required)")
	referenceCSV := flag.String("reference-csv", "", "Candle CSV for the reference asset (required)")
	targetSymbol := flag.String("target-symbol", "ES", "Target asset symbol")
	referenceSymbol := flag.String("reference-symbol", "NQ", "Reference asset symbol")
	outputDir := flag.String("output-dir", "out", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", "", "Optional PostgreSQL DSN; completed setups are persisted when set")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "Optional ClickHouse DSN; enriched candles are persisted when set")

	fibEntry := flag.Float64("fib-entry", 0.5, "Entry retracement level")
	fibStop := flag.Float64("fib-stop", 1.0, "Stop level")
	fibTarget := flag.Float64("fib-target", 0.0, "Target extension level")
	entryMode := flag.String("entry-mode", string(domain.EntryModeFib), "Entry mode: FIB or SWEEP")
	ppiExpiry := flag.Int("ppi-expiry", 12, "Candles allowed between divergence and sweep")
	entryExpiry := flag.Int("entry-expiry", 7, "Candles allowed between BOS and fill")
	trailing := flag.Bool("trailing", true, "Re-base the impulse extreme while pending")
	trendFilter := flag.Bool("trend-filter", false, "Gate setup creation on the EMA trend")
	trendEMA := flag.Int("trend-ema", 50, "EMA period for the trend filter")
	minWickRatio := flag.Float64("min-wick-ratio", 0, "Minimum sweep wick fraction (0 disables)")
	minATR := flag.Float64("min-atr", 0, "Minimum atr_14 on the sweep candle (0 disables)")
	maxATR := flag.Float64("max-atr", 0, "Maximum atr_14 on the sweep candle (0 disables)")
	minRVol := flag.Float64("min-rvol", 0, "Minimum relative volume on the sweep candle (0 disables)")
	macroFilter := flag.Bool("macro-filter", false, "Require hourly macro trend alignment")
	bbExpansion := flag.Bool("bb-expansion", false, "Require Bollinger band expansion on the sweep candle")
	breakevenR := flag.Float64("breakeven-r", 0, "R-multiple that moves the stop to entry (0 disables)")
	pointValues := flag.String("point-values", "", "Per-point values, e.g. ES=50,NQ=20")
	flag.Parse()

	fromCSV := *targetCSV != "" || *referenceCSV != ""
	if fromCSV && (*targetCSV == "" || *referenceCSV == "") {
		fmt.Fprintln(os.Stderr, "Error: --target-csv and --reference-csv must be set together")
		os.Exit(1)
	}
	if !fromCSV && *clickhouseDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: provide --target-csv/--reference-csv or --clickhouse-dsn")
		os.Exit(1)
	}

	cfg := domain.DefaultConfig()
	cfg.FibEntry = *fibEntry
	cfg.FibStop = *fibStop
	cfg.FibTarget = *fibTarget
	cfg.EntryMode = domain.EntryMode(*entryMode)
	cfg.PPIExpiryCandles = *ppiExpiry
	cfg.EntryExpiryCandles = *entryExpiry
	cfg.UseTrailingFib = *trailing
	cfg.UseTrendFilter = *trendFilter
	cfg.TrendEMAPeriod = *trendEMA
	cfg.MinWickRatio = *minWickRatio
	cfg.MinATR = *minATR
	cfg.MaxATR = *maxATR
	cfg.MinRVol = *minRVol
	cfg.UseMacroFilter = *macroFilter
	cfg.RequireBBExpansion = *bbExpansion
	cfg.BreakevenTriggerR = *breakevenR

	pv, err := parsePointValues(*pointValues)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.PointValues = pv

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	var target, reference []*domain.Candle
	if fromCSV {
		var err error
		target, err = dataprep.LoadCandlesCSV(*targetCSV, *targetSymbol)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading target candles: %v\n", err)
			os.Exit(1)
		}
		reference, err = dataprep.LoadCandlesCSV(*referenceCSV, *referenceSymbol)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading reference candles: %v\n", err)
			os.Exit(1)
		}

		dataprep.Enrich(target)
		dataprep.Enrich(reference)

		if *clickhouseDSN != "" {
			if err := persistCandles(context.Background(), *clickhouseDSN, target, reference); err != nil {
				fmt.Fprintf(os.Stderr, "Error persisting candles: %v\n", err)
				os.Exit(1)
			}
		}
	} else {
		var err error
		target, reference, err = loadCandles(context.Background(), *clickhouseDSN, *targetSymbol, *referenceSymbol)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading candles from clickhouse: %v\n", err)
			os.Exit(1)
		}
	}

	var startMs, endMs int64
	if len(target) > 0 {
		startMs = target[0].TimestampMs
		endMs = target[len(target)-1].TimestampMs
	}
	runID := idhash.ComputeRunID(cfg.ID(), *targetSymbol, *referenceSymbol, startMs, endMs)

	results := engine.NewSetupEngine(cfg).Run(target, reference)
	report := reporting.BuildReport(runID, cfg, *targetSymbol, *referenceSymbol, startMs, endMs, results)

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output dir: %v\n", err)
		os.Exit(1)
	}
	tradesPath := filepath.Join(*outputDir, "trades.csv")
	if err := os.WriteFile(tradesPath, []byte(reporting.RenderTradesCSV(report.Setups)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", tradesPath, err)
		os.Exit(1)
	}
	reportPath := filepath.Join(*outputDir, "report.md")
	if err := os.WriteFile(reportPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", reportPath, err)
		os.Exit(1)
	}

	if *postgresDSN != "" {
		if err := persistSetups(context.Background(), *postgresDSN, runID, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error persisting setups: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Run %s completed:\n", runID)
	fmt.Printf("  Setups: %d (filled %d)\n", report.Total, report.Filled)
	fmt.Printf("  W/L/E: %d/%d/%d\n", report.Wins, report.Losses, report.Expired)
	fmt.Printf("  Win rate: %.4f\n", report.WinRate)
	fmt.Printf("  Total PnL: %.4f\n", report.TotalPnL)
	fmt.Printf("  Wrote %s, %s\n", tradesPath, reportPath)
}

// parsePointValues parses "ES=50,NQ=20" into a symbol-to-value map.
func parsePointValues(s string) (map[string]float64, error) {
	if s == "" {
		return nil, nil
	}
	out := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed point value %q, want SYMBOL=VALUE", pair)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("point value for %s: %w", name, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}

func persistSetups(ctx context.Context, dsn, runID string, report *reporting.Report) error {
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrations.RunPostgres(ctx, pool); err != nil {
		return err
	}
	return pgstore.NewSetupRecordStore(pool).InsertBulk(ctx, runID, report.Setups)
}

// loadCandles reads previously persisted candle streams for both symbols.
// Candles stored by a prior run already carry their indicators, so no
// enrichment happens here.
func loadCandles(ctx context.Context, dsn, targetSymbol, referenceSymbol string) ([]*domain.Candle, []*domain.Candle, error) {
	conn, err := chstore.NewConn(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	defer conn.Close()

	store := chstore.NewCandleStore(conn)
	target, err := store.GetBySymbol(ctx, targetSymbol)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s candles: %w", targetSymbol, err)
	}
	reference, err := store.GetBySymbol(ctx, referenceSymbol)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s candles: %w", referenceSymbol, err)
	}
	return target, reference, nil
}

func persistCandles(ctx context.Context, dsn string, streams ...[]*domain.Candle) error {
	database, err := chstore.DatabaseFromDSN(dsn)
	if err != nil {
		return err
	}

	bootstrap, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return err
	}
	if err := bootstrap.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database)); err != nil {
		bootstrap.Close()
		return fmt.Errorf("create database %s: %w", database, err)
	}
	bootstrap.Close()

	conn, err := chstore.NewConn(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := migrations.RunClickhouse(ctx, conn); err != nil {
		return err
	}

	store := chstore.NewCandleStore(conn)
	for _, candles := range streams {
		if len(candles) == 0 {
			continue
		}
		if err := store.InsertBulk(ctx, candles); err != nil {
			return err
		}
	}
	return nil
}
