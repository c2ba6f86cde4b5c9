// Package metrics aggregates completed trade setups into run statistics.
package metrics

import "divergence-lab/internal/domain"

// Collector accumulates completed trade setups in completion order and
// derives win rate, PnL and streak statistics. It is not safe for
// concurrent use; each engine run owns its own collector.
type Collector struct {
	setups []*domain.TradeSetup
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{setups: make([]*domain.TradeSetup, 0)}
}

// Add appends a completed setup. Callers must only add setups in a
// terminal state.
func (c *Collector) Add(s *domain.TradeSetup) {
	c.setups = append(c.setups, s)
}

// Setups returns all completed setups in completion order.
func (c *Collector) Setups() []*domain.TradeSetup {
	return c.setups
}

// FilledSetups returns the WIN/LOSS subsequence in completion order,
// excluding EXPIRED entries.
func (c *Collector) FilledSetups() []*domain.TradeSetup {
	var filled []*domain.TradeSetup
	for _, s := range c.setups {
		if s.Filled() {
			filled = append(filled, s)
		}
	}
	return filled
}

// Total returns the number of completed setups, expired included.
func (c *Collector) Total() int {
	return len(c.setups)
}

// Wins counts setups that hit target.
func (c *Collector) Wins() int {
	return c.countState(domain.StateWin)
}

// Losses counts setups that hit stop.
func (c *Collector) Losses() int {
	return c.countState(domain.StateLoss)
}

// Expired counts setups that timed out or were force-closed.
func (c *Collector) Expired() int {
	return c.countState(domain.StateExpired)
}

// WinRate returns wins/(wins+losses) as a fraction, 0 when nothing filled.
func (c *Collector) WinRate() float64 {
	wins := c.Wins()
	filled := wins + c.Losses()
	if filled == 0 {
		return 0
	}
	return float64(wins) / float64(filled)
}

// TotalPnL sums realized PnL over all setups.
func (c *Collector) TotalPnL() float64 {
	var total float64
	for _, s := range c.setups {
		total += s.PnL
	}
	return total
}

// MaxConsecutiveWins returns the longest WIN streak over the filled
// subsequence; EXPIRED entries do not break or extend streaks.
func (c *Collector) MaxConsecutiveWins() int {
	return c.maxConsecutive(domain.StateWin)
}

// MaxConsecutiveLosses returns the longest LOSS streak over the filled
// subsequence.
func (c *Collector) MaxConsecutiveLosses() int {
	return c.maxConsecutive(domain.StateLoss)
}

func (c *Collector) countState(state domain.SetupState) int {
	n := 0
	for _, s := range c.setups {
		if s.State == state {
			n++
		}
	}
	return n
}

func (c *Collector) maxConsecutive(state domain.SetupState) int {
	maxStreak, streak := 0, 0
	for _, s := range c.setups {
		if !s.Filled() {
			continue
		}
		if s.State == state {
			streak++
			if streak > maxStreak {
				maxStreak = streak
			}
		} else {
			streak = 0
		}
	}
	return maxStreak
}
