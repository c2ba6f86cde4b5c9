package domain

// Indicator field names attached by the data-preparation layer.
// The engine never computes these; it only reads them.
const (
	IndicatorATR14         = "atr_14"
	IndicatorWickRatioUp   = "wick_ratio_up"
	IndicatorWickRatioDown = "wick_ratio_down"
	IndicatorRVol          = "rvol"
	IndicatorMacroTrend    = "macro_trend"  // -1, 0 (unknown) or +1
	IndicatorBBExpansion   = "bb_expansion" // 1 = expanding, 0 = not
	IndicatorEMA50         = "ema_50"
	IndicatorEMA200        = "ema_200"
)

// Candle is one OHLCV bar for one symbol, with externally attached
// indicator fields.
type Candle struct {
	Symbol      string
	TimestampMs int64 // bar open time, unix ms

	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	// Indicators is an open map of named numeric fields. A key that is
	// absent means the indicator is not defined for this bar (warmup,
	// missing data); each filter decides how to treat absence.
	Indicators map[string]float64
}

// Direction returns +1 for a green candle, -1 for red, 0 for a doji.
func (c *Candle) Direction() int {
	switch {
	case c.Close > c.Open:
		return 1
	case c.Close < c.Open:
		return -1
	default:
		return 0
	}
}

// Indicator returns the named indicator value and whether it is present.
func (c *Candle) Indicator(name string) (float64, bool) {
	if c.Indicators == nil {
		return 0, false
	}
	v, ok := c.Indicators[name]
	return v, ok
}

// IndicatorTrue reads a boolean-valued indicator; absent reads as false.
func (c *Candle) IndicatorTrue(name string) bool {
	v, ok := c.Indicator(name)
	return ok && v != 0
}

// SetIndicator attaches a named indicator value, allocating the map lazily.
func (c *Candle) SetIndicator(name string, value float64) {
	if c.Indicators == nil {
		c.Indicators = make(map[string]float64, 8)
	}
	c.Indicators[name] = value
}
