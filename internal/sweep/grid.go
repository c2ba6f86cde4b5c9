// Package sweep expands a parameter grid into configurations, runs an
// independent backtest per configuration and ranks the results.
package sweep

import "divergence-lab/internal/domain"

// Grid is the set of parameter axes to sweep. An empty axis keeps the
// base configuration's value.
type Grid struct {
	FibEntry           []float64
	UseTrendFilter     []bool
	TrendEMAPeriods    []int
	BreakevenTriggerR  []float64
	EntryExpiryCandles []int
}

// DefaultGrid returns the standard exploration grid.
func DefaultGrid() Grid {
	return Grid{
		FibEntry:           []float64{0.5, 0.618},
		UseTrendFilter:     []bool{false, true},
		TrendEMAPeriods:    []int{50, 200},
		BreakevenTriggerR:  []float64{0, 0.5},
		EntryExpiryCandles: []int{5, 7},
	}
}

// Expand produces one configuration per grid point, derived from base.
// With the trend filter off the EMA period has no effect, so only the
// first period is emitted for those points; otherwise the grid would
// contain behaviorally identical configurations.
func (g Grid) Expand(base domain.Config) []domain.Config {
	fibEntries := orFloat(g.FibEntry, base.FibEntry)
	trendFilters := orBool(g.UseTrendFilter, base.UseTrendFilter)
	emaPeriods := orInt(g.TrendEMAPeriods, base.TrendEMAPeriod)
	breakevens := orFloat(g.BreakevenTriggerR, base.BreakevenTriggerR)
	entryExpiries := orInt(g.EntryExpiryCandles, base.EntryExpiryCandles)

	var configs []domain.Config
	for _, fe := range fibEntries {
		for _, tf := range trendFilters {
			for _, ema := range emaPeriods {
				if !tf && ema != emaPeriods[0] {
					continue
				}
				for _, be := range breakevens {
					for _, exp := range entryExpiries {
						cfg := base
						cfg.FibEntry = fe
						cfg.UseTrendFilter = tf
						cfg.TrendEMAPeriod = ema
						cfg.BreakevenTriggerR = be
						cfg.EntryExpiryCandles = exp
						configs = append(configs, cfg)
					}
				}
			}
		}
	}
	return configs
}

func orFloat(axis []float64, base float64) []float64 {
	if len(axis) == 0 {
		return []float64{base}
	}
	return axis
}

func orBool(axis []bool, base bool) []bool {
	if len(axis) == 0 {
		return []bool{base}
	}
	return axis
}

func orInt(axis []int, base int) []int {
	if len(axis) == 0 {
		return []int{base}
	}
	return axis
}
