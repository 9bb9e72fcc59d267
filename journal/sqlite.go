package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists ledger snapshots. Derived trade fields are not
// stored; Hydrate recomputes them after Load, so the database can never
// disagree with the derivation rules.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the snapshot database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save replaces the stored snapshot with snap in a single transaction.
func (s *SQLiteStore) Save(snap Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"trades", "strategies", "accounts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, a := range snap.Accounts {
		if _, err := tx.Exec(
			`INSERT INTO accounts (id, name, balance) VALUES (?, ?, ?)`,
			a.ID, a.Name, a.Balance,
		); err != nil {
			return fmt.Errorf("save account %s: %w", a.ID, err)
		}
	}
	for _, st := range snap.Strategies {
		if _, err := tx.Exec(
			`INSERT INTO strategies (id, name) VALUES (?, ?)`,
			st.ID, st.Name,
		); err != nil {
			return fmt.Errorf("save strategy %s: %w", st.ID, err)
		}
	}
	for _, t := range snap.Trades {
		if _, err := tx.Exec(`
			INSERT INTO trades
			(id, symbol, account_id, strategy_id, side, entry_date, entry_price,
			 quantity, stop_loss, target, exit_date, exit_price, parent_id, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Symbol, t.AccountID, t.StrategyID, string(t.Side),
			t.EntryDate, t.EntryPrice, t.Quantity, t.StopLoss, t.Target,
			t.ExitDate, t.ExitPrice, t.ParentID, string(t.Status),
		); err != nil {
			return fmt.Errorf("save trade %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. An empty database loads as an empty
// snapshot, not an error.
func (s *SQLiteStore) Load() (Snapshot, error) {
	var snap Snapshot

	rows, err := s.db.Query(`SELECT id, name, balance FROM accounts`)
	if err != nil {
		return snap, fmt.Errorf("load accounts: %w", err)
	}
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Balance); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan account: %w", err)
		}
		snap.Accounts = append(snap.Accounts, a)
	}
	if err := rows.Close(); err != nil {
		return snap, err
	}

	rows, err = s.db.Query(`SELECT id, name FROM strategies`)
	if err != nil {
		return snap, fmt.Errorf("load strategies: %w", err)
	}
	for rows.Next() {
		var st Strategy
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan strategy: %w", err)
		}
		snap.Strategies = append(snap.Strategies, st)
	}
	if err := rows.Close(); err != nil {
		return snap, err
	}

	rows, err = s.db.Query(`
		SELECT id, symbol, account_id, strategy_id, side, entry_date, entry_price,
		       quantity, stop_loss, target, exit_date, exit_price, parent_id, status
		FROM trades`)
	if err != nil {
		return snap, fmt.Errorf("load trades: %w", err)
	}
	for rows.Next() {
		var t Trade
		var side, status string
		if err := rows.Scan(&t.ID, &t.Symbol, &t.AccountID, &t.StrategyID, &side,
			&t.EntryDate, &t.EntryPrice, &t.Quantity, &t.StopLoss, &t.Target,
			&t.ExitDate, &t.ExitPrice, &t.ParentID, &status); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan trade: %w", err)
		}
		t.Side = Side(side)
		t.Status = Status(status)
		snap.Trades = append(snap.Trades, t)
	}
	if err := rows.Close(); err != nil {
		return snap, err
	}

	snap.Version = SchemaVersion
	return snap, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
