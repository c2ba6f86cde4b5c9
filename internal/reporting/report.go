// Package reporting renders backtest results as CSV and Markdown.
package reporting

import (
	"time"

	"divergence-lab/internal/domain"
	"divergence-lab/internal/metrics"
	"divergence-lab/internal/sweep"
)

// Report is the rendered summary of one backtest run.
type Report struct {
	GeneratedAt time.Time

	RunID           string
	ConfigID        string
	TargetSymbol    string
	ReferenceSymbol string
	StartMs         int64
	EndMs           int64

	// Aggregates
	Total                int
	Filled               int
	Wins                 int
	Losses               int
	Expired              int
	WinRate              float64 // fraction in [0, 1]
	TotalPnL             float64
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int

	// Completed setups in completion order.
	Setups []*domain.TradeSetup

	// Sweep rankings, present only for sweep runs.
	SweepSummaries []sweep.Summary
}

// BuildReport assembles a report from one run's collector.
func BuildReport(runID string, cfg domain.Config, targetSymbol, referenceSymbol string, startMs, endMs int64, results *metrics.Collector) *Report {
	return &Report{
		GeneratedAt:          time.Now().UTC(),
		RunID:                runID,
		ConfigID:             cfg.ID(),
		TargetSymbol:         targetSymbol,
		ReferenceSymbol:      referenceSymbol,
		StartMs:              startMs,
		EndMs:                endMs,
		Total:                results.Total(),
		Filled:               len(results.FilledSetups()),
		Wins:                 results.Wins(),
		Losses:               results.Losses(),
		Expired:              results.Expired(),
		WinRate:              results.WinRate(),
		TotalPnL:             results.TotalPnL(),
		MaxConsecutiveWins:   results.MaxConsecutiveWins(),
		MaxConsecutiveLosses: results.MaxConsecutiveLosses(),
		Setups:               results.Setups(),
	}
}
