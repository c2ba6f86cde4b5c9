package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divergence-lab/internal/domain"
	"divergence-lab/internal/storage"
)

func completedSetup(id string, ppiTime int64) *domain.TradeSetup {
	return &domain.TradeSetup{
		SetupID:         id,
		Asset:           "ES",
		State:           domain.StateWin,
		PPITimeMs:       ppiTime,
		PPITargetDir:    1,
		PPIReferenceDir: -1,
		PPIHigh:         102,
		PPILow:          99,
		SweepTimeMs:     ppiTime + 120_000,
		SweepDirection:  domain.DirectionShort,
		Fib1:            103,
		BOSTimeMs:       ppiTime + 240_000,
		Fib0:            97,
		EntryPrice:      100.708,
		StopPrice:       103,
		TargetPrice:     97,
		FillTimeMs:      ppiTime + 360_000,
		Outcome:         domain.OutcomeWin,
		OutcomeTimeMs:   ppiTime + 480_000,
		PnL:             3.708,
		CandlesSincePPI: 4,
		CandlesSinceBOS: 2,
	}
}

func TestSetupRecordStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSetupRecordStore(pool)
	ctx := context.Background()

	want := completedSetup("setup-001", 1700000000000)
	require.NoError(t, store.Insert(ctx, "run-001", want))

	got, err := store.GetByID(ctx, "run-001", "setup-001")
	require.NoError(t, err)

	assert.Equal(t, want.SetupID, got.SetupID)
	assert.Equal(t, want.Asset, got.Asset)
	assert.Equal(t, want.State, got.State)
	assert.Equal(t, want.SweepDirection, got.SweepDirection)
	assert.Equal(t, want.PPITimeMs, got.PPITimeMs)
	assert.Equal(t, want.PPITargetDir, got.PPITargetDir)
	assert.Equal(t, want.PPIReferenceDir, got.PPIReferenceDir)
	assert.InDelta(t, want.EntryPrice, got.EntryPrice, 1e-9)
	assert.InDelta(t, want.StopPrice, got.StopPrice, 1e-9)
	assert.InDelta(t, want.TargetPrice, got.TargetPrice, 1e-9)
	assert.InDelta(t, want.PnL, got.PnL, 1e-9)
	assert.Equal(t, want.Outcome, got.Outcome)
	assert.Equal(t, want.CandlesSincePPI, got.CandlesSincePPI)
	assert.False(t, got.BreakevenActive)
}

func TestSetupRecordStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSetupRecordStore(pool)
	ctx := context.Background()

	s := completedSetup("setup-dup", 1700000000000)
	require.NoError(t, store.Insert(ctx, "run-001", s))

	err := store.Insert(ctx, "run-001", s)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same setup recorded under a different run is a new key.
	assert.NoError(t, store.Insert(ctx, "run-002", s))
}

func TestSetupRecordStore_InsertBulkAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSetupRecordStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, "run-001", completedSetup("setup-b", 2000)))

	// Batch containing an existing key must roll back entirely.
	batch := []*domain.TradeSetup{
		completedSetup("setup-a", 1000),
		completedSetup("setup-b", 2000),
	}
	err := store.InsertBulk(ctx, "run-001", batch)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetByID(ctx, "run-001", "setup-a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSetupRecordStore_GetByRunIDOrder(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSetupRecordStore(pool)
	ctx := context.Background()

	batch := []*domain.TradeSetup{
		completedSetup("zz", 1000),
		completedSetup("aa", 1000),
		completedSetup("mm", 500),
	}
	require.NoError(t, store.InsertBulk(ctx, "run-001", batch))
	require.NoError(t, store.Insert(ctx, "run-002", completedSetup("other", 100)))

	got, err := store.GetByRunID(ctx, "run-001")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "mm", got[0].SetupID)
	assert.Equal(t, "aa", got[1].SetupID)
	assert.Equal(t, "zz", got[2].SetupID)
}

func TestSetupRecordStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSetupRecordStore(pool)
	_, err := store.GetByID(context.Background(), "run-x", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
