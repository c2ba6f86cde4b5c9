package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"divergence-lab/internal/domain"
	"divergence-lab/internal/storage"
)

// SetupRecordStore implements storage.SetupRecordStore using PostgreSQL.
type SetupRecordStore struct {
	pool *Pool
}

// NewSetupRecordStore creates a new SetupRecordStore.
func NewSetupRecordStore(pool *Pool) *SetupRecordStore {
	return &SetupRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SetupRecordStore = (*SetupRecordStore)(nil)

const setupInsertQuery = `
	INSERT INTO setup_records (
		run_id, setup_id, asset, state,
		ppi_time_ms, ppi_target_dir, ppi_reference_dir, ppi_high, ppi_low,
		sweep_time_ms, sweep_direction, fib1,
		bos_time_ms, fib0,
		entry_price, stop_price, target_price, fill_time_ms,
		outcome, outcome_time_ms, pnl,
		candles_since_ppi, candles_since_bos, breakeven_active
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
	)
`

const setupSelectColumns = `
	run_id, setup_id, asset, state,
	ppi_time_ms, ppi_target_dir, ppi_reference_dir, ppi_high, ppi_low,
	sweep_time_ms, sweep_direction, fib1,
	bos_time_ms, fib0,
	entry_price, stop_price, target_price, fill_time_ms,
	outcome, outcome_time_ms, pnl,
	candles_since_ppi, candles_since_bos, breakeven_active
`

func setupInsertArgs(runID string, t *domain.TradeSetup) []any {
	return []any{
		runID, t.SetupID, t.Asset, string(t.State),
		t.PPITimeMs, t.PPITargetDir, t.PPIReferenceDir, t.PPIHigh, t.PPILow,
		t.SweepTimeMs, string(t.SweepDirection), t.Fib1,
		t.BOSTimeMs, t.Fib0,
		t.EntryPrice, t.StopPrice, t.TargetPrice, t.FillTimeMs,
		t.Outcome, t.OutcomeTimeMs, t.PnL,
		t.CandlesSincePPI, t.CandlesSinceBOS, t.BreakevenActive,
	}
}

// Insert adds one completed setup. Returns ErrDuplicateKey if
// (run_id, setup_id) exists.
func (s *SetupRecordStore) Insert(ctx context.Context, runID string, t *domain.TradeSetup) error {
	if runID == "" || t == nil || t.SetupID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, setupInsertQuery, setupInsertArgs(runID, t)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert setup record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple setups atomically. Fails entire batch on any duplicate.
func (s *SetupRecordStore) InsertBulk(ctx context.Context, runID string, setups []*domain.TradeSetup) error {
	if len(setups) == 0 {
		return nil
	}
	if runID == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range setups {
		if t == nil || t.SetupID == "" {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, setupInsertQuery, setupInsertArgs(runID, t)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert setup record in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRunID retrieves all setups of a run, ordered by ppi_time_ms ASC,
// setup_id ASC.
func (s *SetupRecordStore) GetByRunID(ctx context.Context, runID string) ([]*domain.TradeSetup, error) {
	query := `
		SELECT ` + setupSelectColumns + `
		FROM setup_records
		WHERE run_id = $1
		ORDER BY ppi_time_ms ASC, setup_id ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get setups by run id: %w", err)
	}
	defer rows.Close()

	return scanSetups(rows)
}

// GetByID retrieves one setup. Returns ErrNotFound if not exists.
func (s *SetupRecordStore) GetByID(ctx context.Context, runID, setupID string) (*domain.TradeSetup, error) {
	query := `
		SELECT ` + setupSelectColumns + `
		FROM setup_records
		WHERE run_id = $1 AND setup_id = $2
	`

	row := s.pool.QueryRow(ctx, query, runID, setupID)
	t, err := scanSetup(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get setup by id: %w", err)
	}
	return t, nil
}

func scanSetup(row pgx.Row) (*domain.TradeSetup, error) {
	var t domain.TradeSetup
	var runID, state, direction string

	err := row.Scan(
		&runID, &t.SetupID, &t.Asset, &state,
		&t.PPITimeMs, &t.PPITargetDir, &t.PPIReferenceDir, &t.PPIHigh, &t.PPILow,
		&t.SweepTimeMs, &direction, &t.Fib1,
		&t.BOSTimeMs, &t.Fib0,
		&t.EntryPrice, &t.StopPrice, &t.TargetPrice, &t.FillTimeMs,
		&t.Outcome, &t.OutcomeTimeMs, &t.PnL,
		&t.CandlesSincePPI, &t.CandlesSinceBOS, &t.BreakevenActive,
	)
	if err != nil {
		return nil, err
	}

	t.State = domain.SetupState(state)
	t.SweepDirection = domain.Direction(direction)
	return &t, nil
}

func scanSetups(rows pgx.Rows) ([]*domain.TradeSetup, error) {
	var setups []*domain.TradeSetup
	for rows.Next() {
		t, err := scanSetup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan setup record row: %w", err)
		}
		setups = append(setups, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate setup record rows: %w", err)
	}
	return setups, nil
}
