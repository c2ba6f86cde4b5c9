package sweep

import (
	"testing"

	"divergence-lab/internal/domain"
)

func TestGridExpand(t *testing.T) {
	configs := DefaultGrid().Expand(domain.DefaultConfig())

	// 2 fib entries x (1 + 2) trend/EMA points x 2 breakevens x 2 expiries.
	// With the trend filter off the EMA axis collapses to one point.
	if len(configs) != 24 {
		t.Fatalf("got %d configs, want 24", len(configs))
	}

	ids := make(map[string]struct{}, len(configs))
	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			t.Errorf("config %s invalid: %v", cfg.ID(), err)
		}
		if _, exists := ids[cfg.ID()]; exists {
			t.Errorf("duplicate config ID %s", cfg.ID())
		}
		ids[cfg.ID()] = struct{}{}
	}
}

func TestGridExpand_EmptyAxesKeepBase(t *testing.T) {
	base := domain.DefaultConfig()
	base.FibEntry = 0.618

	configs := Grid{EntryExpiryCandles: []int{5, 7, 9}}.Expand(base)
	if len(configs) != 3 {
		t.Fatalf("got %d configs, want 3", len(configs))
	}
	for _, cfg := range configs {
		if cfg.FibEntry != 0.618 {
			t.Errorf("empty axis must keep base value, got %v", cfg.FibEntry)
		}
	}
}

func TestGridExpand_NoEMADuplicatesWithTrendOff(t *testing.T) {
	g := Grid{
		UseTrendFilter:  []bool{false},
		TrendEMAPeriods: []int{50, 200},
	}
	configs := g.Expand(domain.DefaultConfig())
	if len(configs) != 1 {
		t.Fatalf("EMA axis must collapse with trend filter off, got %d configs", len(configs))
	}
}
