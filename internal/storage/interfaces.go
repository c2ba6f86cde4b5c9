package storage

import (
	"context"

	"divergence-lab/internal/domain"
)

// SetupRecordStore provides access to setup_records storage. Records are
// append-only: a completed setup is written once and never updated.
type SetupRecordStore interface {
	// Insert adds one completed setup under a run. Returns ErrDuplicateKey
	// if (run_id, setup_id) exists.
	Insert(ctx context.Context, runID string, s *domain.TradeSetup) error

	// InsertBulk adds multiple setups atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, runID string, setups []*domain.TradeSetup) error

	// GetByRunID retrieves all setups of a run, ordered by ppi_time_ms ASC,
	// setup_id ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.TradeSetup, error)

	// GetByID retrieves one setup. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID, setupID string) (*domain.TradeSetup, error)
}

// CandleStore provides access to candles storage.
type CandleStore interface {
	// InsertBulk adds multiple candles. Fails entire batch on duplicate
	// (symbol, timestamp_ms).
	InsertBulk(ctx context.Context, candles []*domain.Candle) error

	// GetBySymbol retrieves all candles for a symbol, ordered by timestamp ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.Candle, error)

	// GetBySymbolRange retrieves candles for a symbol within [start, end]
	// (inclusive), ordered by timestamp ASC.
	GetBySymbolRange(ctx context.Context, symbol string, start, end int64) ([]*domain.Candle, error)
}
