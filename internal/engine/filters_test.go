package engine

import (
	"testing"

	"divergence-lab/internal/domain"
)

func sweepCandle() *domain.Candle {
	return &domain.Candle{
		Symbol: "ES", TimestampMs: 0,
		Open: 100, High: 103, Low: 100, Close: 101, Volume: 100,
		Indicators: map[string]float64{},
	}
}

func TestSweepFilters_ATRBoundsSkippedWhenAbsent(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.MinATR = 1.0
	cfg.MaxATR = 5.0

	c := sweepCandle() // no atr_14 at all
	if !sweepFiltersPass(cfg, c, domain.DirectionShort) {
		t.Error("missing atr_14 must skip the ATR bounds, not reject")
	}

	c.SetIndicator(domain.IndicatorATR14, 0.5)
	if sweepFiltersPass(cfg, c, domain.DirectionShort) {
		t.Error("atr below the floor must reject")
	}
	c.SetIndicator(domain.IndicatorATR14, 6.0)
	if sweepFiltersPass(cfg, c, domain.DirectionShort) {
		t.Error("atr above the ceiling must reject")
	}
	c.SetIndicator(domain.IndicatorATR14, 2.0)
	if !sweepFiltersPass(cfg, c, domain.DirectionShort) {
		t.Error("atr inside the bounds must pass")
	}
}

func TestSweepFilters_WickRatioFailsClosed(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.MinWickRatio = 0.3

	c := sweepCandle() // wick ratios absent: read as 0
	if sweepFiltersPass(cfg, c, domain.DirectionShort) {
		t.Error("missing wick ratio must fail closed")
	}

	// A short sweep is judged on the upper wick only.
	c.SetIndicator(domain.IndicatorWickRatioUp, 0.5)
	c.SetIndicator(domain.IndicatorWickRatioDown, 0.0)
	if !sweepFiltersPass(cfg, c, domain.DirectionShort) {
		t.Error("upper wick above threshold must pass for SHORT")
	}
	if sweepFiltersPass(cfg, c, domain.DirectionLong) {
		t.Error("LONG must be judged on the lower wick")
	}
}

func TestSweepFilters_RVolFailsClosed(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.MinRVol = 1.2

	c := sweepCandle()
	if sweepFiltersPass(cfg, c, domain.DirectionShort) {
		t.Error("missing rvol must fail closed")
	}
	c.SetIndicator(domain.IndicatorRVol, 1.5)
	if !sweepFiltersPass(cfg, c, domain.DirectionShort) {
		t.Error("rvol above threshold must pass")
	}
}

func TestSweepFilters_BBExpansion(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.RequireBBExpansion = true

	c := sweepCandle()
	if sweepFiltersPass(cfg, c, domain.DirectionShort) {
		t.Error("missing bb_expansion must fail closed")
	}
	c.SetIndicator(domain.IndicatorBBExpansion, 1)
	if !sweepFiltersPass(cfg, c, domain.DirectionShort) {
		t.Error("bb expansion set must pass")
	}
}

func TestSweepFilters_MacroAlignment(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.UseMacroFilter = true

	c := sweepCandle()
	if sweepFiltersPass(cfg, c, domain.DirectionShort) {
		t.Error("missing macro trend must fail closed")
	}

	c.SetIndicator(domain.IndicatorMacroTrend, -1)
	if !sweepFiltersPass(cfg, c, domain.DirectionShort) {
		t.Error("bearish macro must permit SHORT")
	}
	if sweepFiltersPass(cfg, c, domain.DirectionLong) {
		t.Error("bearish macro must reject LONG")
	}

	c.SetIndicator(domain.IndicatorMacroTrend, 1)
	if !sweepFiltersPass(cfg, c, domain.DirectionLong) {
		t.Error("bullish macro must permit LONG")
	}
}

func TestSweepFilters_DisabledFiltersAlwaysPass(t *testing.T) {
	cfg := domain.DefaultConfig() // all filters off
	c := sweepCandle()            // no indicators at all
	if !sweepFiltersPass(cfg, c, domain.DirectionShort) {
		t.Error("with no filters enabled a bare candle must pass")
	}
}

func TestTrendPermits_FailsOpenWithoutEMA(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.TrendEMAPeriod = 50

	c := sweepCandle() // green, no ema_50
	if !trendPermits(cfg, c) {
		t.Error("missing EMA must fail open")
	}

	// Green candle above its EMA: shorting into strength, rejected.
	c.SetIndicator(domain.IndicatorEMA50, 100.0)
	if trendPermits(cfg, c) {
		t.Error("green close above ema_50 must be rejected")
	}
	c.SetIndicator(domain.IndicatorEMA50, 102.0)
	if !trendPermits(cfg, c) {
		t.Error("green close below ema_50 must be permitted")
	}
}

func TestTrendPermits_RedCandle(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.TrendEMAPeriod = 200

	c := sweepCandle()
	c.Open, c.Close = 101, 100 // red
	c.SetIndicator(domain.IndicatorEMA200, 100.5)
	if trendPermits(cfg, c) {
		t.Error("red close below ema_200 must be rejected")
	}
	c.SetIndicator(domain.IndicatorEMA200, 99.0)
	if !trendPermits(cfg, c) {
		t.Error("red close above ema_200 must be permitted")
	}
}

func TestRun_FilterFailureRejectsCandleOutright(t *testing.T) {
	// A bearish sweep shape that fails its filters must not fall through
	// to the bullish check even when the candle also dips under the low.
	cfg := domain.DefaultConfig()
	cfg.FibEntry, cfg.FibStop, cfg.FibTarget = 0.618, 1.0, 0.0
	cfg.MinRVol = 1.2

	target := []*domain.Candle{
		bar("ES", 0, 100, 102, 99, 101),
		bar("ES", 1, 100, 103, 98.5, 100), // sweeps both sides, rvol absent
		bar("ES", 2, 100, 101, 99.5, 100.2),
	}
	reference := []*domain.Candle{
		bar("NQ", 0, 200, 201, 198, 199),
		flatRef(1),
		flatRef(2),
	}

	s := setupsFor(NewSetupEngine(cfg).Run(target, reference), "ES")[0]
	if s.State != domain.StateExpired || s.SweepTimeMs != 0 {
		t.Fatalf("filtered sweep candle must leave the setup in PPI, got %s sweep=%d", s.State, s.SweepTimeMs)
	}
}
