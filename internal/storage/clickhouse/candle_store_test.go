package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divergence-lab/internal/domain"
	"divergence-lab/internal/storage"
)

func testCandle(symbol string, ts int64) *domain.Candle {
	return &domain.Candle{
		Symbol:      symbol,
		TimestampMs: ts,
		Open:        100, High: 103, Low: 99, Close: 101,
		Volume: 1500,
		Indicators: map[string]float64{
			domain.IndicatorATR14:      2.5,
			domain.IndicatorMacroTrend: -1,
		},
	}
}

func TestCandleStore_InsertBulkAndGetBySymbol(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	batch := []*domain.Candle{
		testCandle("ES", 1700000240000),
		testCandle("ES", 1700000000000),
		testCandle("NQ", 1700000000000),
	}
	require.NoError(t, store.InsertBulk(ctx, batch))

	got, err := store.GetBySymbol(ctx, "ES")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1700000000000), got[0].TimestampMs)
	assert.Equal(t, int64(1700000240000), got[1].TimestampMs)
	assert.Equal(t, 103.0, got[0].High)

	atr, ok := got[0].Indicator(domain.IndicatorATR14)
	require.True(t, ok, "indicator map must survive the round trip")
	assert.InDelta(t, 2.5, atr, 1e-9)

	trend, ok := got[0].Indicator(domain.IndicatorMacroTrend)
	require.True(t, ok)
	assert.Equal(t, -1.0, trend)
}

func TestCandleStore_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Candle{testCandle("ES", 1000)}))

	err := store.InsertBulk(ctx, []*domain.Candle{testCandle("ES", 1000)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Intra-batch duplicate is also rejected.
	err = store.InsertBulk(ctx, []*domain.Candle{
		testCandle("NQ", 2000),
		testCandle("NQ", 2000),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestCandleStore_GetBySymbolRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	var batch []*domain.Candle
	for ts := int64(1000); ts <= 5000; ts += 1000 {
		batch = append(batch, testCandle("ES", ts))
	}
	require.NoError(t, store.InsertBulk(ctx, batch))

	got, err := store.GetBySymbolRange(ctx, "ES", 2000, 4000)
	require.NoError(t, err)
	require.Len(t, got, 3, "range bounds are inclusive")
	assert.Equal(t, int64(2000), got[0].TimestampMs)
	assert.Equal(t, int64(4000), got[2].TimestampMs)
}

func TestCandleStore_EmptyIndicators(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	c := testCandle("ES", 1000)
	c.Indicators = nil
	require.NoError(t, store.InsertBulk(ctx, []*domain.Candle{c}))

	got, err := store.GetBySymbol(ctx, "ES")
	require.NoError(t, err)
	require.Len(t, got, 1)
	_, ok := got[0].Indicator(domain.IndicatorATR14)
	assert.False(t, ok)
}
