package sweep

import (
	"math"
	"testing"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name    string
		winRate float64
		pnl     float64
		filled  int
		want    float64
	}{
		{"zero everything", 0, 0, 0, 0},
		// 50*0.5 + (5000/25000)*50 + (100/200)*20
		{"midfield", 0.5, 5000, 100, 25 + 10 + 10},
		// wr bonus kicks in at 60: 65*0.5 + 0 + 20 + (65-60)*2
		{"bonus tier", 0.65, 0, 400, 32.5 + 20 + 10},
		// super tier stacks both bonuses: 75*0.5 + 50 + 20 + 30 + 25
		{"super tier capped pnl", 0.75, 100_000, 500, 37.5 + 50 + 20 + 30 + 25},
		// losses clamp at -1: 0 - 50 + 0.5
		{"deep drawdown", 0, -200_000, 5, -50 + 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.winRate, tc.pnl, tc.filled)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
