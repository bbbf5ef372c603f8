package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	trade_date DATETIME NOT NULL,
	contract TEXT NOT NULL,
	volume INTEGER NOT NULL,
	price REAL NOT NULL,
	amount REAL NOT NULL,
	commission REAL NOT NULL,
	realized_pl REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, trade_date);

CREATE TABLE IF NOT EXISTS nav (
	run_id TEXT NOT NULL,
	trade_date DATETIME NOT NULL,
	nav REAL NOT NULL,
	equity REAL NOT NULL,
	cash REAL NOT NULL,
	required_margin REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nav_run ON nav(run_id, trade_date);
`
