package postgres

import (
	"database/sql"

	"cold-chain-ledger/internal/adapters/storage/sqlstore"
)

// Dialect de Postgres: placeholders $n, bloqueo de fila en Update y lecturas
// en REPEATABLE READ (read committed toma un snapshot por statement).
var Dialect = sqlstore.Dialect{
	Name:          "postgres",
	Placeholder:   sqlstore.DollarPlaceholder,
	LockClause:    "FOR UPDATE",
	CreationOrder: "created_seq",
	ReadIsolation: sql.LevelRepeatableRead,
}

func NewLotsRepo(db *sql.DB) *sqlstore.LotsRepo {
	return sqlstore.NewLotsRepo(db, Dialect)
}
