// Package sqlite persiste el ledger en un único archivo SQLite (driver pure-go).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"cold-chain-ledger/internal/adapters/storage/sqlstore"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var Dialect = sqlstore.Dialect{
	Name:          "sqlite",
	Placeholder:   sqlstore.QuestionPlaceholder,
	LockClause:    "",
	CreationOrder: "rowid",
	// Con una sola conexión, la transacción de lectura ya es un snapshot.
	ReadIsolation: sql.LevelDefault,
}

const schema = `
CREATE TABLE IF NOT EXISTS lots (
	id            TEXT PRIMARY KEY,
	created_at    DATETIME NOT NULL,
	status        TEXT NOT NULL,
	temp_min      REAL NOT NULL,
	temp_max      REAL NOT NULL,
	laboratory_id TEXT NOT NULL,
	logistics_id  TEXT NOT NULL,
	pharmacy_id   TEXT NOT NULL,
	breached      BOOLEAN NOT NULL DEFAULT 0,
	delivered_at  DATETIME NULL,
	CHECK (temp_min <= temp_max)
);
CREATE TABLE IF NOT EXISTS temperature_records (
	lot_id       TEXT NOT NULL REFERENCES lots(id),
	seq          INTEGER NOT NULL,
	value        REAL NOT NULL,
	recorded_at  DATETIME NOT NULL,
	recorded_by  TEXT NOT NULL,
	custodian_id TEXT NOT NULL,
	location     TEXT NOT NULL DEFAULT '',
	out_of_range BOOLEAN NOT NULL,
	PRIMARY KEY (lot_id, seq)
);`

// Open abre (o crea) la base en path y asegura el schema.
// Una sola conexión: SQLite serializa las escrituras de todas formas.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = "coldchain.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	q := url.Values{}
	q.Set("_time_format", "sqlite")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")

	db, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

func NewLotsRepo(db *sql.DB) *sqlstore.LotsRepo {
	return sqlstore.NewLotsRepo(db, Dialect)
}
