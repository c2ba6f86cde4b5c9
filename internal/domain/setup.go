package domain

// SetupState is a trade setup lifecycle state.
type SetupState string

// Lifecycle states. PPI is the initial state; WIN, LOSS and EXPIRED are
// terminal.
const (
	StatePPI     SetupState = "PPI"     // divergence detected, looking for sweep
	StateSweep   SetupState = "SWEEP"   // sweep detected, looking for BOS
	StatePending SetupState = "PENDING" // BOS confirmed, waiting for entry fill
	StateFilled  SetupState = "FILLED"  // entry filled, tracking outcome
	StateWin     SetupState = "WIN"
	StateLoss    SetupState = "LOSS"
	StateExpired SetupState = "EXPIRED"
)

// Terminal reports whether the state ends the setup lifecycle.
func (s SetupState) Terminal() bool {
	return s == StateWin || s == StateLoss || s == StateExpired
}

// Direction is the trade direction implied by a sweep.
type Direction string

// Direction constants.
const (
	DirectionLong  Direction = "LONG"  // sweep of the low, expecting up
	DirectionShort Direction = "SHORT" // sweep of the high, expecting down
)

// Outcome reason codes.
const (
	OutcomeWin          = "WIN"
	OutcomeLoss         = "LOSS"
	OutcomePPIExpired   = "PPI_EXPIRED"   // no qualifying sweep in time
	OutcomeEntryExpired = "ENTRY_EXPIRED" // no fill after BOS in time
	OutcomeRunEnded     = "RUN_ENDED"     // stream ended with setup in flight
)

// TradeSetup tracks one divergence-to-outcome lifecycle for one asset.
// It is owned exclusively by the engine that created it; once a terminal
// state is reached no field changes again.
type TradeSetup struct {
	SetupID string // deterministic hash, see idhash
	Asset   string
	State   SetupState

	// Divergence.
	PPITimeMs       int64
	PPITargetDir    int // target-asset candle direction at divergence
	PPIReferenceDir int
	PPIHigh         float64
	PPILow          float64

	// Sweep. Fib1 is the locked sweep extreme and never changes after the
	// setup enters SWEEP.
	SweepTimeMs    int64
	SweepDirection Direction
	Fib1           float64

	// Break of structure. Fib0 is the impulse extreme; it may trail while
	// PENDING and is frozen on fill.
	BOSTimeMs int64
	Fib0      float64

	// Computed levels.
	EntryPrice  float64
	StopPrice   float64
	TargetPrice float64

	FillTimeMs int64

	// Outcome.
	Outcome       string
	OutcomeTimeMs int64
	PnL           float64

	// Age counters.
	CandlesSincePPI int
	CandlesSinceBOS int

	// BreakevenActive guards the one-shot stop move to entry.
	BreakevenActive bool
}

// Filled reports whether the setup reached a fill (WIN or LOSS).
func (t *TradeSetup) Filled() bool {
	return t.State == StateWin || t.State == StateLoss
}
