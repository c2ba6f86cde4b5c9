package engine

import (
	"math"

	"divergence-lab/internal/domain"
)

// stepPPI looks for a liquidity sweep of the divergence candle's extremes.
// A candle that sweeps but fails the filters is rejected outright; it is
// never re-tested against the opposite side.
func (e *SetupEngine) stepPPI(s *domain.TradeSetup, c *domain.Candle) {
	s.CandlesSincePPI++
	if s.CandlesSincePPI > e.cfg.PPIExpiryCandles {
		s.State = domain.StateExpired
		s.Outcome = domain.OutcomePPIExpired
		s.OutcomeTimeMs = c.TimestampMs
		return
	}

	// Bearish sweep: wick above the PPI high, close back inside.
	if c.High > s.PPIHigh && c.Close <= s.PPIHigh {
		if !sweepFiltersPass(e.cfg, c, domain.DirectionShort) {
			return
		}
		s.SweepTimeMs = c.TimestampMs
		s.SweepDirection = domain.DirectionShort
		s.Fib1 = c.High
		s.State = domain.StateSweep
		return
	}

	// Bullish sweep: wick below the PPI low, close back inside.
	if c.Low < s.PPILow && c.Close >= s.PPILow {
		if !sweepFiltersPass(e.cfg, c, domain.DirectionLong) {
			return
		}
		s.SweepTimeMs = c.TimestampMs
		s.SweepDirection = domain.DirectionLong
		s.Fib1 = c.Low
		s.State = domain.StateSweep
	}
}

// stepSweep waits for the break of structure: a close beyond the opposite
// extreme of the divergence candle.
func (e *SetupEngine) stepSweep(s *domain.TradeSetup, c *domain.Candle) {
	if s.SweepDirection == domain.DirectionShort {
		if c.Close < s.PPILow {
			e.confirmBOS(s, c, c.Low)
		}
		return
	}
	if c.Close > s.PPIHigh {
		e.confirmBOS(s, c, c.High)
	}
}

func (e *SetupEngine) confirmBOS(s *domain.TradeSetup, c *domain.Candle, extreme float64) {
	s.BOSTimeMs = c.TimestampMs
	s.Fib0 = extreme
	s.EntryPrice, s.StopPrice, s.TargetPrice = computeLevels(e.cfg, s.Fib0, s.Fib1, s.SweepDirection)
	s.State = domain.StatePending
}

// stepPending trails the fib range, then checks for a fill, then for
// expiry. A fill on the expiry candle still counts.
func (e *SetupEngine) stepPending(s *domain.TradeSetup, c *domain.Candle) {
	s.CandlesSinceBOS++

	if e.cfg.UseTrailingFib {
		if s.SweepDirection == domain.DirectionShort {
			if c.Low < s.Fib0 {
				s.Fib0 = c.Low
				s.EntryPrice, s.StopPrice, s.TargetPrice = computeLevels(e.cfg, s.Fib0, s.Fib1, s.SweepDirection)
			}
		} else if c.High > s.Fib0 {
			s.Fib0 = c.High
			s.EntryPrice, s.StopPrice, s.TargetPrice = computeLevels(e.cfg, s.Fib0, s.Fib1, s.SweepDirection)
		}
	}

	if s.SweepDirection == domain.DirectionShort {
		if c.High >= s.EntryPrice {
			s.FillTimeMs = c.TimestampMs
			s.State = domain.StateFilled
			return
		}
	} else if c.Low <= s.EntryPrice {
		s.FillTimeMs = c.TimestampMs
		s.State = domain.StateFilled
		return
	}

	if s.CandlesSinceBOS >= e.cfg.EntryExpiryCandles {
		s.State = domain.StateExpired
		s.Outcome = domain.OutcomeEntryExpired
		s.OutcomeTimeMs = c.TimestampMs
	}
}

// stepFilled tracks the open position to its outcome. When one candle's
// range spans both levels the stop wins: the engine always books the LOSS.
func (e *SetupEngine) stepFilled(s *domain.TradeSetup, c *domain.Candle) {
	if e.cfg.BreakevenTriggerR > 0 && !s.BreakevenActive {
		risk := math.Abs(s.EntryPrice - s.StopPrice)
		if s.SweepDirection == domain.DirectionShort {
			if c.Low <= s.EntryPrice-risk*e.cfg.BreakevenTriggerR {
				s.StopPrice = s.EntryPrice
				s.BreakevenActive = true
			}
		} else if c.High >= s.EntryPrice+risk*e.cfg.BreakevenTriggerR {
			s.StopPrice = s.EntryPrice
			s.BreakevenActive = true
		}
	}

	pointValue := e.cfg.PointValue(s.Asset)

	if s.SweepDirection == domain.DirectionShort {
		switch {
		case c.High >= s.StopPrice:
			s.State = domain.StateLoss
			s.Outcome = domain.OutcomeLoss
			s.OutcomeTimeMs = c.TimestampMs
			s.PnL = (s.EntryPrice - s.StopPrice) * pointValue
		case c.Low <= s.TargetPrice:
			s.State = domain.StateWin
			s.Outcome = domain.OutcomeWin
			s.OutcomeTimeMs = c.TimestampMs
			s.PnL = (s.EntryPrice - s.TargetPrice) * pointValue
		}
		return
	}

	switch {
	case c.Low <= s.StopPrice:
		s.State = domain.StateLoss
		s.Outcome = domain.OutcomeLoss
		s.OutcomeTimeMs = c.TimestampMs
		s.PnL = (s.StopPrice - s.EntryPrice) * pointValue
	case c.High >= s.TargetPrice:
		s.State = domain.StateWin
		s.Outcome = domain.OutcomeWin
		s.OutcomeTimeMs = c.TimestampMs
		s.PnL = (s.TargetPrice - s.EntryPrice) * pointValue
	}
}
