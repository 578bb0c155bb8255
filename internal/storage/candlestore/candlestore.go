// Package candlestore caches historical candles and backtest run
// records in SQLite (pure Go driver, no CGo).
package candlestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
	"github.com/horaciomoreno100/deriv-bot/internal/engine"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS candles (
    symbol      TEXT    NOT NULL,
    granularity INTEGER NOT NULL,
    epoch       INTEGER NOT NULL,
    open        REAL    NOT NULL,
    high        REAL    NOT NULL,
    low         REAL    NOT NULL,
    close       REAL    NOT NULL,
    PRIMARY KEY (symbol, granularity, epoch)
);

CREATE TABLE IF NOT EXISTS runs (
    id              TEXT PRIMARY KEY,
    strategy        TEXT     NOT NULL,
    symbol          TEXT     NOT NULL,
    granularity     INTEGER  NOT NULL,
    started_at      DATETIME NOT NULL,
    initial_cash    REAL     NOT NULL,
    final_cash      REAL     NOT NULL,
    total_contracts INTEGER  NOT NULL,
    wins            INTEGER  NOT NULL,
    losses          INTEGER  NOT NULL,
    net_profit      REAL     NOT NULL
);

CREATE TABLE IF NOT EXISTS contracts (
    run_id      TEXT     NOT NULL REFERENCES runs(id),
    seq         INTEGER  NOT NULL,
    contract_id INTEGER  NOT NULL,
    direction   TEXT     NOT NULL,
    entry_price REAL     NOT NULL,
    entry_time  INTEGER  NOT NULL,
    expiry_time INTEGER  NOT NULL,
    stake       REAL     NOT NULL,
    payout_rate REAL     NOT NULL,
    status      TEXT     NOT NULL,
    exit_price  REAL     NOT NULL,
    profit      REAL     NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_candles_range ON candles(symbol, granularity, epoch);
CREATE INDEX IF NOT EXISTS idx_runs_started  ON runs(started_at DESC);
`

// RunRecord is the persisted summary of one backtest run.
type RunRecord struct {
	ID             string
	Strategy       string
	Symbol         string
	Granularity    int
	StartedAt      time.Time
	InitialCash    float64
	FinalCash      float64
	TotalContracts int
	Wins           int
	Losses         int
	NetProfit      float64
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("opening %s: %w", path, err))
	}
	// Single writer; also keeps :memory: databases on one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("applying schema: %w", err))
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCandles upserts candles in a single transaction.
func (s *Store) SaveCandles(ctx context.Context, candles []core.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candles (symbol, granularity, epoch, open, high, low, close)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, granularity, epoch) DO UPDATE SET
			open = excluded.open, high = excluded.high,
			low = excluded.low, close = excluded.close`)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if !c.IsValid() {
			return core.WrapError(core.ErrStorageFailed,
				fmt.Errorf("invalid candle %s@%d", c.Symbol, c.Epoch.Unix()))
		}
		if _, err := stmt.ExecContext(ctx,
			c.Symbol, c.Granularity, c.Epoch.Unix(), c.Open, c.High, c.Low, c.Close); err != nil {
			return core.WrapError(core.ErrStorageFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

// LoadCandles returns candles in [start, end] ordered oldest to newest.
func (s *Store) LoadCandles(ctx context.Context, symbol string, granularity int, start, end time.Time) ([]core.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT epoch, open, high, low, close
		FROM candles
		WHERE symbol = ? AND granularity = ? AND epoch BETWEEN ? AND ?
		ORDER BY epoch ASC`,
		symbol, granularity, start.Unix(), end.Unix())
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	defer rows.Close()

	var out []core.Candle
	for rows.Next() {
		var epoch int64
		c := core.Candle{Symbol: symbol, Granularity: granularity}
		if err := rows.Scan(&epoch, &c.Open, &c.High, &c.Low, &c.Close); err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, err)
		}
		c.Epoch = time.Unix(epoch, 0).UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	if len(out) == 0 {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("no cached candles for %s/%ds in range", symbol, granularity))
	}
	return out, nil
}

// Coverage reports the cached range and count for a series.
func (s *Store) Coverage(ctx context.Context, symbol string, granularity int) (first, last time.Time, count int, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MIN(epoch), 0), COALESCE(MAX(epoch), 0), COUNT(*)
		FROM candles WHERE symbol = ? AND granularity = ?`,
		symbol, granularity)

	var minEpoch, maxEpoch int64
	if err = row.Scan(&minEpoch, &maxEpoch, &count); err != nil {
		err = core.WrapError(core.ErrStorageFailed, err)
		return
	}
	if count > 0 {
		first = time.Unix(minEpoch, 0).UTC()
		last = time.Unix(maxEpoch, 0).UTC()
	}
	return
}

// SaveRun persists a backtest run summary and its settled contracts,
// in settlement order.
func (s *Store) SaveRun(ctx context.Context, r RunRecord, contracts []*engine.Contract) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, strategy, symbol, granularity, started_at,
			initial_cash, final_cash, total_contracts, wins, losses, net_profit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Strategy, r.Symbol, r.Granularity, r.StartedAt.UTC(),
		r.InitialCash, r.FinalCash, r.TotalContracts, r.Wins, r.Losses, r.NetProfit)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("saving run %s: %w", r.ID, err))
	}

	for seq, c := range contracts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contracts (run_id, seq, contract_id, direction, entry_price, entry_time,
				expiry_time, stake, payout_rate, status, exit_price, profit)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, seq, c.ID, string(c.Direction), c.EntryPrice, c.EntryTime.Unix(),
			c.ExpiryTime.Unix(), c.Stake, c.PayoutRate, string(c.Status), c.ExitPrice, c.Profit)
		if err != nil {
			return core.WrapError(core.ErrStorageFailed, fmt.Errorf("saving contract %d of run %s: %w", seq, r.ID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

// LoadContracts returns a run's settled contracts in settlement order.
func (s *Store) LoadContracts(ctx context.Context, runID string) ([]*engine.Contract, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT contract_id, direction, entry_price, entry_time, expiry_time,
			stake, payout_rate, status, exit_price, profit
		FROM contracts WHERE run_id = ? ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	defer rows.Close()

	var out []*engine.Contract
	for rows.Next() {
		var (
			direction, status    string
			entryEpoch, expEpoch int64
			c                    engine.Contract
		)
		if err := rows.Scan(&c.ID, &direction, &c.EntryPrice, &entryEpoch, &expEpoch,
			&c.Stake, &c.PayoutRate, &status, &c.ExitPrice, &c.Profit); err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, err)
		}
		c.Direction = core.Direction(direction)
		c.Status = engine.ContractStatus(status)
		c.EntryTime = time.Unix(entryEpoch, 0).UTC()
		c.ExpiryTime = time.Unix(expEpoch, 0).UTC()
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return out, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strategy, symbol, granularity, started_at,
			initial_cash, final_cash, total_contracts, wins, losses, net_profit
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Strategy, &r.Symbol, &r.Granularity, &r.StartedAt,
			&r.InitialCash, &r.FinalCash, &r.TotalContracts, &r.Wins, &r.Losses, &r.NetProfit); err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, err)
		}
		r.StartedAt = r.StartedAt.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return out, nil
}
