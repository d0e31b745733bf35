// Package sqlstore implementa lots.Repository sobre database/sql.
// Los adapters postgres y sqlite solo aportan el driver y el Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cold-chain-ledger/internal/domain/lots"
)

// Dialect cubre las diferencias de SQL entre motores.
type Dialect struct {
	Name string

	// Placeholder devuelve el marcador del argumento n (1-based).
	Placeholder func(n int) string

	// LockClause se agrega al SELECT del lote dentro de Update ("FOR UPDATE" o "").
	LockClause string

	// CreationOrder es la columna que preserva el orden de inserción.
	CreationOrder string

	// ReadIsolation es el aislamiento de las lecturas: lote e historial
	// tienen que salir del mismo snapshot.
	ReadIsolation sql.IsolationLevel
}

func DollarPlaceholder(n int) string   { return fmt.Sprintf("$%d", n) }
func QuestionPlaceholder(n int) string { return "?" }

type LotsRepo struct {
	db *sql.DB
	d  Dialect
}

func NewLotsRepo(db *sql.DB, d Dialect) *LotsRepo {
	return &LotsRepo{db: db, d: d}
}

// q reemplaza los "?" de la query por los placeholders del dialecto.
func (r *LotsRepo) q(query string) string {
	var sb strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			sb.WriteString(r.d.Placeholder(n))
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

const lotColumns = `id, created_at, status, temp_min, temp_max,
	laboratory_id, logistics_id, pharmacy_id, breached, delivered_at`

const recordColumns = `lot_id, seq, value, recorded_at, recorded_by, custodian_id, location, out_of_range`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *LotsRepo) Create(ctx context.Context, l lots.Lot) error {
	if strings.TrimSpace(l.ID) == "" {
		return errors.New("lot id required")
	}

	res, err := r.db.ExecContext(ctx, r.q(`
		INSERT INTO lots (`+lotColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (id) DO NOTHING
	`),
		l.ID,
		l.CreatedAt,
		string(l.Status),
		l.TempMin,
		l.TempMax,
		string(l.Custodians.Laboratory),
		string(l.Custodians.Logistics),
		string(l.Custodians.Pharmacy),
		l.Breached,
		nullTime(l.DeliveredAt),
	)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	if n == 0 {
		return lots.ErrLotExists
	}
	return nil
}

// view corre fn dentro de una transacción de solo lectura.
func (r *LotsRepo) view(ctx context.Context, fn func(q querier) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: r.d.ReadIsolation, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *LotsRepo) GetByID(ctx context.Context, id string) (lots.Lot, error) {
	var l lots.Lot
	err := r.view(ctx, func(q querier) error {
		var err error
		l, err = r.load(ctx, q, id, "")
		return err
	})
	if err != nil {
		return lots.Lot{}, err
	}
	return l, nil
}

func (r *LotsRepo) List(ctx context.Context) ([]lots.Lot, error) {
	var out []lots.Lot
	err := r.view(ctx, func(q querier) error {
		var err error
		out, err = r.list(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LotsRepo) list(ctx context.Context, db querier) ([]lots.Lot, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+lotColumns+` FROM lots ORDER BY `+r.d.CreationOrder)
	if err != nil {
		return nil, fmt.Errorf("select lots: %w", err)
	}
	defer rows.Close()

	out := make([]lots.Lot, 0)
	index := map[string]int{}
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		index[l.ID] = len(out)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recs, err := db.QueryContext(ctx, `SELECT `+recordColumns+` FROM temperature_records ORDER BY lot_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer recs.Close()

	for recs.Next() {
		lotID, rec, err := scanRecord(recs)
		if err != nil {
			return nil, err
		}
		if i, ok := index[lotID]; ok {
			out[i].History = append(out[i].History, rec)
		}
	}
	return out, recs.Err()
}

// Update aplica fn dentro de una transacción. Solo persiste los registros nuevos
// y los campos mutables (status, breached, delivered_at).
func (r *LotsRepo) Update(ctx context.Context, id string, fn func(*lots.Lot) error) (_ lots.Lot, retErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return lots.Lot{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	before, err := r.load(ctx, tx, id, r.d.LockClause)
	if err != nil {
		return lots.Lot{}, err
	}

	after := before.Clone()
	if err := fn(&after); err != nil {
		return lots.Lot{}, err
	}
	if err := lots.CheckUpdate(before, after); err != nil {
		return lots.Lot{}, err
	}

	for seq := len(before.History); seq < len(after.History); seq++ {
		rec := after.History[seq]
		if _, err := tx.ExecContext(ctx, r.q(`
			INSERT INTO temperature_records (`+recordColumns+`)
			VALUES (?,?,?,?,?,?,?,?)
		`),
			id,
			seq,
			rec.Value,
			rec.RecordedAt,
			string(rec.RecordedBy),
			string(rec.Custodian),
			rec.Location,
			rec.OutOfRange,
		); err != nil {
			return lots.Lot{}, fmt.Errorf("insert record %d: %w", seq, err)
		}
	}

	if _, err := tx.ExecContext(ctx, r.q(`
		UPDATE lots
		SET status = ?, breached = ?, delivered_at = ?
		WHERE id = ?
	`),
		string(after.Status),
		after.Breached,
		nullTime(after.DeliveredAt),
		id,
	); err != nil {
		return lots.Lot{}, fmt.Errorf("update lot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return lots.Lot{}, fmt.Errorf("commit: %w", err)
	}
	return after, nil
}

func (r *LotsRepo) load(ctx context.Context, db querier, id, lock string) (lots.Lot, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return lots.Lot{}, lots.ErrLotNotFound
	}

	row := db.QueryRowContext(ctx, r.q(`SELECT `+lotColumns+` FROM lots WHERE id = ? `+lock), id)
	l, err := scanLot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lots.Lot{}, lots.ErrLotNotFound
		}
		return lots.Lot{}, err
	}

	rows, err := db.QueryContext(ctx, r.q(`SELECT `+recordColumns+` FROM temperature_records WHERE lot_id = ? ORDER BY seq`), id)
	if err != nil {
		return lots.Lot{}, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		_, rec, err := scanRecord(rows)
		if err != nil {
			return lots.Lot{}, err
		}
		l.History = append(l.History, rec)
	}
	return l, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLot(s scanner) (lots.Lot, error) {
	var (
		l                 lots.Lot
		status            string
		lab, logi, pharma string
		delivered         sql.NullTime
	)
	if err := s.Scan(
		&l.ID,
		&l.CreatedAt,
		&status,
		&l.TempMin,
		&l.TempMax,
		&lab,
		&logi,
		&pharma,
		&l.Breached,
		&delivered,
	); err != nil {
		return lots.Lot{}, err
	}

	l.Status = lots.Status(status)
	l.Custodians = lots.Custodians{
		Laboratory: lots.ParticipantID(lab),
		Logistics:  lots.ParticipantID(logi),
		Pharmacy:   lots.ParticipantID(pharma),
	}
	if delivered.Valid {
		t := delivered.Time
		l.DeliveredAt = &t
	}
	l.History = []lots.TemperatureRecord{}
	return l, nil
}

func scanRecord(s scanner) (string, lots.TemperatureRecord, error) {
	var (
		lotID      string
		seq        int
		rec        lots.TemperatureRecord
		role, cust string
	)
	if err := s.Scan(
		&lotID,
		&seq,
		&rec.Value,
		&rec.RecordedAt,
		&role,
		&cust,
		&rec.Location,
		&rec.OutOfRange,
	); err != nil {
		return "", lots.TemperatureRecord{}, fmt.Errorf("scan record: %w", err)
	}
	rec.RecordedBy = lots.Role(role)
	rec.Custodian = lots.ParticipantID(cust)
	return lotID, rec, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
