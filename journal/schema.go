package journal

// Times are stored in UTC so range queries compare correctly as text.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trade_id TEXT NOT NULL UNIQUE,
	instrument TEXT NOT NULL,
	direction TEXT NOT NULL,
	units REAL NOT NULL,
	entry_price REAL NOT NULL,
	stop_loss REAL NOT NULL,
	take_profit REAL NOT NULL,
	open_time DATETIME NOT NULL,
	confidence REAL NOT NULL,
	session TEXT NOT NULL,
	range_high REAL NOT NULL,
	range_low REAL NOT NULL,
	status TEXT NOT NULL DEFAULT 'OPEN',
	exit_price REAL,
	close_time DATETIME,
	exit_reason TEXT,
	pnl_pips REAL,
	pnl_amount REAL
);

CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);
CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status);
`
