// Package engine implements the divergence setup state machine.
//
// Strategy phases:
//  1. PPI: target and reference close in opposite directions (divergence)
//  2. SWEEP: price wicks beyond the PPI high/low but closes inside
//  3. BOS: price closes beyond the opposite level (confirmation)
//  4. PENDING: waiting for the limit entry to fill
//  5. FILLED: tracking to WIN or LOSS
package engine

import (
	"sort"

	"divergence-lab/internal/domain"
	"divergence-lab/internal/idhash"
	"divergence-lab/internal/metrics"
)

// SetupEngine advances at most one TradeSetup per asset over a pair of
// synchronized candle streams. A single Run is strictly sequential and
// performs no I/O; many engines with independent configs may run in
// parallel over the same read-only candle slices.
type SetupEngine struct {
	cfg      domain.Config
	configID string
}

// NewSetupEngine creates an engine for one immutable configuration.
func NewSetupEngine(cfg domain.Config) *SetupEngine {
	return &SetupEngine{cfg: cfg, configID: cfg.ID()}
}

// Run processes every timestamp present in both streams in ascending
// order and returns the populated collector. Timestamps present in only
// one stream are skipped silently. Setups still in flight when the
// streams end are force-closed as EXPIRED.
func (e *SetupEngine) Run(target, reference []*domain.Candle) *metrics.Collector {
	results := metrics.NewCollector()

	tgt := sortedByTime(target)
	ref := sortedByTime(reference)

	// Deterministic advancement order: target first, then reference.
	active := make(map[string]*domain.TradeSetup, 2)
	var order []string

	i, j := 0, 0
	for i < len(tgt) && j < len(ref) {
		switch {
		case tgt[i].TimestampMs < ref[j].TimestampMs:
			i++
		case tgt[i].TimestampMs > ref[j].TimestampMs:
			j++
		default:
			order = e.step(tgt[i], ref[j], active, order, results)
			i++
			j++
		}
	}

	// Force-close whatever is still in flight.
	var lastTs int64
	if len(tgt) > 0 {
		lastTs = tgt[len(tgt)-1].TimestampMs
	}
	for _, asset := range order {
		s, ok := active[asset]
		if !ok {
			continue
		}
		s.State = domain.StateExpired
		s.Outcome = domain.OutcomeRunEnded
		s.OutcomeTimeMs = lastTs
		results.Add(s)
		delete(active, asset)
	}

	return results
}

// step handles one shared timestamp: advance actives first, then look for
// a new divergence. The ordering prevents a freshly created setup from
// consuming the candle that created it.
func (e *SetupEngine) step(tc, rc *domain.Candle, active map[string]*domain.TradeSetup, order []string, results *metrics.Collector) []string {
	for _, c := range []*domain.Candle{tc, rc} {
		s, ok := active[c.Symbol]
		if !ok {
			continue
		}
		e.advance(s, c)
		if s.State.Terminal() {
			results.Add(s)
			delete(active, c.Symbol)
			order = removeAsset(order, c.Symbol)
		}
	}

	tdir, rdir := tc.Direction(), rc.Direction()
	if tdir == 0 || rdir == 0 || tdir == rdir {
		return order
	}

	// Divergence: open a candidate setup on both assets and let each
	// asset's own price action decide which one validates.
	for _, c := range []*domain.Candle{tc, rc} {
		if _, ok := active[c.Symbol]; ok {
			continue
		}
		if e.cfg.UseTrendFilter && !trendPermits(e.cfg, c) {
			continue
		}
		s := &domain.TradeSetup{
			SetupID:         idhash.ComputeSetupID(e.configID, c.Symbol, c.TimestampMs),
			Asset:           c.Symbol,
			State:           domain.StatePPI,
			PPITimeMs:       c.TimestampMs,
			PPITargetDir:    tdir,
			PPIReferenceDir: rdir,
			PPIHigh:         c.High,
			PPILow:          c.Low,
		}
		active[c.Symbol] = s
		order = append(order, c.Symbol)
	}
	return order
}

func (e *SetupEngine) advance(s *domain.TradeSetup, c *domain.Candle) {
	switch s.State {
	case domain.StatePPI:
		e.stepPPI(s, c)
	case domain.StateSweep:
		e.stepSweep(s, c)
	case domain.StatePending:
		e.stepPending(s, c)
	case domain.StateFilled:
		e.stepFilled(s, c)
	}
}

func sortedByTime(candles []*domain.Candle) []*domain.Candle {
	out := make([]*domain.Candle, len(candles))
	copy(out, candles)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	return out
}

func removeAsset(order []string, asset string) []string {
	for i, a := range order {
		if a == asset {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
