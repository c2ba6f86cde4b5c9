package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// EntryMode selects how entry/stop/target are derived from the fib range.
type EntryMode string

// Entry mode constants.
const (
	// EntryModeFib waits for a retracement into the range (standard).
	EntryModeFib EntryMode = "FIB"
	// EntryModeSweep places the limit at the sweep extreme itself (retest).
	EntryModeSweep EntryMode = "SWEEP"
	// EntryModeBreakout is a trend-following variant whose calculation was
	// never settled; Validate rejects it.
	EntryModeBreakout EntryMode = "BREAKOUT"
)

// Config is the immutable parameter bundle for one backtest run.
// It must not be mutated after a run starts; independent runs holding the
// same Config may execute in parallel.
type Config struct {
	Timeframe string // label only, e.g. "2m"

	PPIExpiryCandles   int // candles after divergence to find a sweep
	EntryExpiryCandles int // candles after BOS to fill the entry

	FibEntry  float64
	FibStop   float64
	FibTarget float64

	// PointValues maps asset symbol to the currency value of one price
	// point. Assets without an entry fall back to 1.
	PointValues map[string]float64

	EntryMode      EntryMode
	UseTrailingFib bool

	// Trend filter, applied when a divergence candidate is created.
	UseTrendFilter bool
	TrendEMAPeriod int

	// Sweep filters.
	MinWickRatio       float64
	MinATR             float64
	MaxATR             float64 // 0 disables the upper bound
	MinRVol            float64
	UseMacroFilter     bool
	RequireBBExpansion bool

	// BreakevenTriggerR moves the stop to entry once price has moved this
	// many R-multiples in favor. 0 disables.
	BreakevenTriggerR float64
}

// DefaultConfig returns the reference parameter set.
func DefaultConfig() Config {
	return Config{
		Timeframe:          "2m",
		PPIExpiryCandles:   12,
		EntryExpiryCandles: 7,
		FibEntry:           0.5,
		FibStop:            1.0,
		FibTarget:          0.0,
		EntryMode:          EntryModeFib,
		UseTrailingFib:     true,
		TrendEMAPeriod:     50,
	}
}

// PointValue returns the per-point currency value for an asset (1 if unset).
func (c Config) PointValue(asset string) float64 {
	if v, ok := c.PointValues[asset]; ok && v > 0 {
		return v
	}
	return 1
}

// Validate checks the configuration before a run. The engine itself never
// validates; a run with a nonsensical Config produces nonsensical trades.
func (c Config) Validate() error {
	if c.PPIExpiryCandles <= 0 {
		return errors.New("ppi expiry candles must be positive")
	}
	if c.EntryExpiryCandles <= 0 {
		return errors.New("entry expiry candles must be positive")
	}
	if c.FibEntry <= 0 {
		return errors.New("fib entry must be positive")
	}
	if c.FibStop <= c.FibEntry {
		return fmt.Errorf("fib stop (%v) must exceed fib entry (%v)", c.FibStop, c.FibEntry)
	}
	if c.FibTarget < 0 {
		return errors.New("fib target must not be negative")
	}
	switch c.EntryMode {
	case EntryModeFib, EntryModeSweep:
	case EntryModeBreakout:
		return errors.New("entry mode BREAKOUT is not supported")
	default:
		return fmt.Errorf("unknown entry mode %q", c.EntryMode)
	}
	if c.UseTrendFilter && c.TrendEMAPeriod <= 0 {
		return errors.New("trend filter requires a positive EMA period")
	}
	if c.MaxATR > 0 && c.MinATR > c.MaxATR {
		return fmt.Errorf("min atr (%v) exceeds max atr (%v)", c.MinATR, c.MaxATR)
	}
	if c.BreakevenTriggerR < 0 {
		return errors.New("breakeven trigger must not be negative")
	}
	return nil
}

// ID returns a deterministic identifier encoding every parameter that can
// change trade flow. Used in setup IDs and sweep reports.
func (c Config) ID() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s_%s_e%.3f_s%.3f_t%.3f_ppi%d_exp%d",
		c.EntryMode, c.Timeframe, c.FibEntry, c.FibStop, c.FibTarget,
		c.PPIExpiryCandles, c.EntryExpiryCandles)
	if c.UseTrailingFib {
		sb.WriteString("_trail")
	}
	if c.UseTrendFilter {
		fmt.Fprintf(&sb, "_ema%d", c.TrendEMAPeriod)
	}
	if c.MinWickRatio > 0 {
		fmt.Fprintf(&sb, "_wick%.2f", c.MinWickRatio)
	}
	if c.MinATR > 0 {
		fmt.Fprintf(&sb, "_atrmin%.2f", c.MinATR)
	}
	if c.MaxATR > 0 {
		fmt.Fprintf(&sb, "_atrmax%.2f", c.MaxATR)
	}
	if c.MinRVol > 0 {
		fmt.Fprintf(&sb, "_rvol%.2f", c.MinRVol)
	}
	if c.UseMacroFilter {
		sb.WriteString("_macro")
	}
	if c.RequireBBExpansion {
		sb.WriteString("_bbexp")
	}
	if c.BreakevenTriggerR > 0 {
		fmt.Fprintf(&sb, "_be%.2f", c.BreakevenTriggerR)
	}
	if len(c.PointValues) > 0 {
		assets := make([]string, 0, len(c.PointValues))
		for a := range c.PointValues {
			assets = append(assets, a)
		}
		sort.Strings(assets)
		for _, a := range assets {
			fmt.Fprintf(&sb, "_%s%.0f", a, c.PointValues[a])
		}
	}
	return sb.String()
}
