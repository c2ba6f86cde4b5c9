// Package dataprep loads raw candles and attaches the indicator fields
// the engine's filters read. Indicators are only set once their warmup
// window is satisfied; earlier bars simply lack the key.
package dataprep

import (
	"sort"

	"github.com/markcheno/go-talib"

	"divergence-lab/internal/domain"
)

const (
	atrPeriod       = 14
	rvolPeriod      = 20
	bbPeriod        = 20
	bbStdDev        = 2.0
	bbExpansionLook = 50
	macroEMAPeriod  = 50
	hourMs          = int64(3_600_000)
)

// Enrich attaches EMA, ATR, relative volume, wick-ratio, Bollinger
// expansion and lagged hourly macro-trend indicators to the candles,
// in place. The slice is sorted by timestamp first.
func Enrich(candles []*domain.Candle) {
	if len(candles) == 0 {
		return
	}
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].TimestampMs < candles[j].TimestampMs
	})

	n := len(candles)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	vols := make([]float64, n)
	for i, c := range candles {
		highs[i], lows[i], closes[i], vols[i] = c.High, c.Low, c.Close, c.Volume
	}

	attachSeries(candles, domain.IndicatorEMA50, talib.Ema(closes, 50), 49)
	attachSeries(candles, domain.IndicatorEMA200, talib.Ema(closes, 200), 199)

	// ATR as the simple rolling mean of true range, not Wilder-smoothed.
	tr := trueRange(highs, lows, closes)
	attachSeries(candles, domain.IndicatorATR14, talib.Sma(tr, atrPeriod), atrPeriod-1)

	volSMA := talib.Sma(vols, rvolPeriod)
	for i := rvolPeriod - 1; i < n; i++ {
		if volSMA[i] > 0 {
			candles[i].SetIndicator(domain.IndicatorRVol, vols[i]/volSMA[i])
		}
	}

	attachWickRatios(candles)
	attachBBExpansion(candles, closes)
	attachMacroTrend(candles)
}

// attachSeries sets a talib output series from firstValid onward. talib
// fills the warmup prefix with zeros; those stay absent.
func attachSeries(candles []*domain.Candle, name string, series []float64, firstValid int) {
	for i := firstValid; i < len(candles); i++ {
		candles[i].SetIndicator(name, series[i])
	}
}

func trueRange(highs, lows, closes []float64) []float64 {
	tr := make([]float64, len(highs))
	tr[0] = highs[0] - lows[0]
	for i := 1; i < len(highs); i++ {
		hl := highs[i] - lows[i]
		hc := highs[i] - closes[i-1]
		if hc < 0 {
			hc = -hc
		}
		lc := lows[i] - closes[i-1]
		if lc < 0 {
			lc = -lc
		}
		tr[i] = hl
		if hc > tr[i] {
			tr[i] = hc
		}
		if lc > tr[i] {
			tr[i] = lc
		}
	}
	return tr
}

// attachWickRatios sets the upper and lower wick fractions of the bar
// range. A zero-range bar reads as 0 on both sides.
func attachWickRatios(candles []*domain.Candle) {
	for _, c := range candles {
		r := c.High - c.Low
		var up, down float64
		if r > 0 {
			bodyUpper := c.Open
			if c.Close > bodyUpper {
				bodyUpper = c.Close
			}
			bodyLower := c.Open
			if c.Close < bodyLower {
				bodyLower = c.Close
			}
			up = (c.High - bodyUpper) / r
			down = (bodyLower - c.Low) / r
		}
		c.SetIndicator(domain.IndicatorWickRatioUp, up)
		c.SetIndicator(domain.IndicatorWickRatioDown, down)
	}
}

// attachBBExpansion flags bars whose Bollinger band width sits above its
// own 50-bar mean.
func attachBBExpansion(candles []*domain.Candle, closes []float64) {
	n := len(closes)
	upper, middle, lower := talib.BBands(closes, bbPeriod, bbStdDev, bbStdDev, talib.SMA)

	width := make([]float64, n)
	for i := bbPeriod - 1; i < n; i++ {
		if middle[i] > 0 {
			width[i] = (upper[i] - lower[i]) / middle[i]
		}
	}
	widthMean := talib.Sma(width, bbExpansionLook)

	firstValid := bbPeriod - 1 + bbExpansionLook - 1
	for i := firstValid; i < n; i++ {
		flag := 0.0
		if width[i] > widthMean[i] {
			flag = 1.0
		}
		candles[i].SetIndicator(domain.IndicatorBBExpansion, flag)
	}
}

// attachMacroTrend computes an hourly EMA trend and stamps every candle
// with the trend of the last COMPLETED hour. The one-bucket lag keeps the
// signal free of lookahead: a candle never sees a trend derived from its
// own hour's close.
func attachMacroTrend(candles []*domain.Candle) {
	// Last close per hour bucket, in time order.
	var hours []int64
	var hourlyCloses []float64
	for _, c := range candles {
		h := c.TimestampMs / hourMs
		if len(hours) > 0 && hours[len(hours)-1] == h {
			hourlyCloses[len(hourlyCloses)-1] = c.Close
			continue
		}
		hours = append(hours, h)
		hourlyCloses = append(hourlyCloses, c.Close)
	}

	// EMA over the hourly closes, seeded from the first close.
	alpha := 2.0 / float64(macroEMAPeriod+1)
	trendByHour := make(map[int64]float64, len(hours))
	ema := hourlyCloses[0]
	prevTrend := 0.0
	for i, close := range hourlyCloses {
		if i > 0 {
			ema = alpha*close + (1-alpha)*ema
		}
		// The trend of the PREVIOUS completed bucket applies to this one.
		if i > 0 {
			trendByHour[hours[i]] = prevTrend
		}
		if close > ema {
			prevTrend = 1
		} else {
			prevTrend = -1
		}
	}

	for _, c := range candles {
		if trend, ok := trendByHour[c.TimestampMs/hourMs]; ok && trend != 0 {
			c.SetIndicator(domain.IndicatorMacroTrend, trend)
		}
	}
}
