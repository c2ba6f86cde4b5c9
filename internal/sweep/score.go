package sweep

// Scoring weights. The composite favors win rate, normalized PnL and
// trade volume, with escalating bonuses for high win rates.
const (
	winRateWeight = 0.5
	pnlWeight     = 50.0
	pnlNormScale  = 25_000.0
	volumeWeight  = 20.0
	volumeCap     = 200

	winRateBonusFloor = 60.0
	winRateBonusRate  = 2.0
	winRateSuperFloor = 70.0
	winRateSuperRate  = 5.0
)

// Score ranks one configuration's results. winRate is a fraction in
// [0, 1], pnl the total realized PnL and filled the number of WIN/LOSS
// setups.
func Score(winRate, pnl float64, filled int) float64 {
	wr := winRate * 100

	pnlNorm := pnl / pnlNormScale
	if pnlNorm > 1 {
		pnlNorm = 1
	} else if pnlNorm < -1 {
		pnlNorm = -1
	}

	volNorm := float64(filled) / volumeCap
	if volNorm > 1 {
		volNorm = 1
	}

	score := wr*winRateWeight + pnlNorm*pnlWeight + volNorm*volumeWeight
	if wr >= winRateBonusFloor {
		score += (wr - winRateBonusFloor) * winRateBonusRate
	}
	if wr >= winRateSuperFloor {
		score += (wr - winRateSuperFloor) * winRateSuperRate
	}
	return score
}
