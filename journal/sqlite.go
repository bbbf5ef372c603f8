package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/rollsim/sim"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(runID string, t sim.TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, trade_date, contract, volume, price, amount, commission, realized_pl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, t.Date, t.Contract, t.Volume, t.Price, t.Amount, t.Commission, t.RealizedPL, t.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordNAV(runID string, r NAVRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO nav
		(run_id, trade_date, nav, equity, cash, required_margin)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, r.Date, r.NAV, r.Equity, r.Cash, r.RequiredMargin,
	)
	return err
}

// ListTrades returns a run's trades in chronological order.
func (j *SQLiteJournal) ListTrades(runID string) ([]sim.TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_date, contract, volume, price, amount, commission, realized_pl, reason
		FROM trades
		WHERE run_id = ?
		ORDER BY trade_date ASC, contract ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sim.TradeRecord
	for rows.Next() {
		var rec sim.TradeRecord
		if err := rows.Scan(
			&rec.Date, &rec.Contract, &rec.Volume, &rec.Price,
			&rec.Amount, &rec.Commission, &rec.RealizedPL, &rec.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// NAVSeries returns a run's NAV path in chronological order.
func (j *SQLiteJournal) NAVSeries(runID string) ([]NAVRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_date, nav, equity, cash, required_margin
		FROM nav
		WHERE run_id = ?
		ORDER BY trade_date ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NAVRecord
	for rows.Next() {
		var rec NAVRecord
		if err := rows.Scan(&rec.Date, &rec.NAV, &rec.Equity, &rec.Cash, &rec.RequiredMargin); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListTradesBetween returns trades across runs within [start, end).
func (j *SQLiteJournal) ListTradesBetween(start, end time.Time) ([]sim.TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_date, contract, volume, price, amount, commission, realized_pl, reason
		FROM trades
		WHERE trade_date >= ? AND trade_date < ?
		ORDER BY trade_date ASC, contract ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sim.TradeRecord
	for rows.Next() {
		var rec sim.TradeRecord
		if err := rows.Scan(
			&rec.Date, &rec.Contract, &rec.Volume, &rec.Price,
			&rec.Amount, &rec.Commission, &rec.RealizedPL, &rec.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
