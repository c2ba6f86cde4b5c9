package memory

import (
	"context"
	"sort"
	"sync"

	"divergence-lab/internal/domain"
	"divergence-lab/internal/storage"
)

type candleKey struct {
	symbol      string
	timestampMs int64
}

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu   sync.RWMutex
	data map[candleKey]*domain.Candle
}

// NewCandleStore creates a new in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{
		data: make(map[candleKey]*domain.Candle),
	}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBulk adds multiple candles. Fails entire batch on duplicate
// (symbol, timestamp_ms).
func (s *CandleStore) InsertBulk(_ context.Context, candles []*domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[candleKey]struct{}, len(candles))
	for _, c := range candles {
		if c == nil || c.Symbol == "" {
			return storage.ErrInvalidInput
		}
		k := candleKey{c.Symbol, c.TimestampMs}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	for _, c := range candles {
		s.data[candleKey{c.Symbol, c.TimestampMs}] = copyCandle(c)
	}
	return nil
}

// GetBySymbol retrieves all candles for a symbol, ordered by timestamp ASC.
func (s *CandleStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Candle
	for k, c := range s.data {
		if k.symbol == symbol {
			result = append(result, copyCandle(c))
		}
	}
	sortCandles(result)
	return result, nil
}

// GetBySymbolRange retrieves candles for a symbol within [start, end]
// (inclusive), ordered by timestamp ASC.
func (s *CandleStore) GetBySymbolRange(_ context.Context, symbol string, start, end int64) ([]*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Candle
	for k, c := range s.data {
		if k.symbol == symbol && k.timestampMs >= start && k.timestampMs <= end {
			result = append(result, copyCandle(c))
		}
	}
	sortCandles(result)
	return result, nil
}

// copyCandle deep-copies a candle including its indicator map.
func copyCandle(c *domain.Candle) *domain.Candle {
	cp := *c
	if c.Indicators != nil {
		cp.Indicators = make(map[string]float64, len(c.Indicators))
		for name, v := range c.Indicators {
			cp.Indicators[name] = v
		}
	}
	return &cp
}

func sortCandles(candles []*domain.Candle) {
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].TimestampMs < candles[j].TimestampMs
	})
}
