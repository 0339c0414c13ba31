package store

// The composite primary key on (ticker, trading_date) is what makes
// re-ingestion of a date an upsert instead of a duplicate insert.
const createDailyBars = `
CREATE TABLE IF NOT EXISTS daily_bars (
	ticker        TEXT    NOT NULL,
	trading_date  DATE    NOT NULL,
	open          NUMERIC,
	high          NUMERIC,
	low           NUMERIC,
	close         NUMERIC,
	volume        BIGINT,
	daily_return  NUMERIC,
	PRIMARY KEY (ticker, trading_date)
)`

const createIngestionLogs = `
CREATE TABLE IF NOT EXISTS ingestion_logs (
	ingestion_date    DATE      NOT NULL,
	row_count         INTEGER   NOT NULL,
	duration_seconds  NUMERIC   NOT NULL,
	logged_at         TIMESTAMP NOT NULL
)`

// schemaStatements are executed one at a time; lib/pq rejects multi-statement
// strings in a single Exec.
var schemaStatements = []string{createDailyBars, createIngestionLogs}
