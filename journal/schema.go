// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	balance REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS strategies (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	account_id TEXT NOT NULL REFERENCES accounts(id),
	strategy_id TEXT NOT NULL REFERENCES strategies(id),
	side TEXT NOT NULL,
	entry_date TEXT NOT NULL,
	entry_price REAL NOT NULL,
	quantity INTEGER NOT NULL,
	stop_loss REAL NOT NULL,
	target REAL NOT NULL,
	exit_date TEXT NOT NULL,
	exit_price REAL NOT NULL,
	parent_id TEXT NOT NULL,
	status TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id);
CREATE INDEX IF NOT EXISTS idx_trades_strategy ON trades(strategy_id);
CREATE INDEX IF NOT EXISTS idx_trades_exit_date ON trades(exit_date);
`
