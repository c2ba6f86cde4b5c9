package engine

import (
	"fmt"

	"divergence-lab/internal/domain"
)

// sweepFiltersPass evaluates the conjunctive sweep filters. A missing
// indicator reads as zero/false and fails closed, except the ATR bounds,
// which are skipped entirely when atr_14 is absent.
func sweepFiltersPass(cfg domain.Config, c *domain.Candle, dir domain.Direction) bool {
	if atr, ok := c.Indicator(domain.IndicatorATR14); ok {
		if cfg.MinATR > 0 && atr < cfg.MinATR {
			return false
		}
		if cfg.MaxATR > 0 && atr > cfg.MaxATR {
			return false
		}
	}

	if cfg.MinWickRatio > 0 {
		name := domain.IndicatorWickRatioUp
		if dir == domain.DirectionLong {
			name = domain.IndicatorWickRatioDown
		}
		ratio, _ := c.Indicator(name)
		if ratio < cfg.MinWickRatio {
			return false
		}
	}

	if cfg.MinRVol > 0 {
		rvol, _ := c.Indicator(domain.IndicatorRVol)
		if rvol < cfg.MinRVol {
			return false
		}
	}

	if cfg.RequireBBExpansion && !c.IndicatorTrue(domain.IndicatorBBExpansion) {
		return false
	}

	if cfg.UseMacroFilter {
		// Macro alignment: short requires the lagged hourly trend to be
		// bearish (-1), long requires bullish (+1). Unknown (absent or 0)
		// rejects.
		want := -1.0
		if dir == domain.DirectionLong {
			want = 1.0
		}
		trend, _ := c.Indicator(domain.IndicatorMacroTrend)
		if trend != want {
			return false
		}
	}

	return true
}

// trendPermits gates setup creation on the EMA trend of the candidate's
// own candle: a green candle (potential short) must not be above its EMA,
// a red candle (potential long) must not be below it. A missing EMA fails
// open.
func trendPermits(cfg domain.Config, c *domain.Candle) bool {
	ema, ok := c.Indicator(fmt.Sprintf("ema_%d", cfg.TrendEMAPeriod))
	if !ok {
		return true
	}
	switch c.Direction() {
	case 1:
		return c.Close <= ema
	case -1:
		return c.Close >= ema
	default:
		return true
	}
}
