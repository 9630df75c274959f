// ABOUTME: SQLite implementation of the entity store adapter
// ABOUTME: Generic list/create/update/delete over whitelisted columns per kind
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
	"github.com/mattn/go-sqlite3"
)

// ErrUnknownColumn is the SQLite name for store.ErrUnknownField.
var ErrUnknownColumn = store.ErrUnknownField

var _ store.Store = (*Store)(nil)

type columnType int

const (
	colText columnType = iota
	colInt
	colTime
)

type column struct {
	name string
	typ  columnType
}

var tables = map[store.Kind][]column{
	store.KindProspects: {
		{"company_name", colText},
		{"stage", colText},
		{"country", colText},
		{"potential_volume", colText},
		{"notes", colText},
		{"last_action_date", colTime},
		{"created_at", colTime},
	},
	store.KindContacts: {
		{"prospect_id", colInt},
		{"name", colText},
		{"role", colText},
		{"email", colText},
		{"phone", colText},
	},
	store.KindSamples: {
		{"prospect_id", colInt},
		{"product", colText},
		{"reference", colText},
		{"status", colText},
		{"date_sent", colTime},
		{"feedback", colText},
	},
	store.KindActivities: {
		{"prospect_id", colInt},
		{"type", colText},
		{"content", colText},
		{"date", colTime},
	},
}

// Store persists records in the SQLite schema.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

func (s *Store) List(ctx context.Context, kind store.Kind, filter store.Filter) ([]store.Record, error) {
	cols, err := columnsFor(kind)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cols)+1)
	names = append(names, "id")
	for _, c := range cols {
		names = append(names, c.name)
	}

	where, args, err := whereClause(kind, cols, filter)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id", strings.Join(names, ", "), kind, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list", kind, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []store.Record
	for rows.Next() {
		rec, err := scanRecord(rows, cols)
		if err != nil {
			return nil, classify("list", kind, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list", kind, err)
	}
	return records, nil
}

func (s *Store) Create(ctx context.Context, kind store.Kind, fields store.Fields) (models.RecordID, error) {
	cols, err := columnsFor(kind)
	if err != nil {
		return 0, err
	}

	names, args, err := assignments(cols, fields)
	if err != nil {
		return 0, err
	}

	var query string
	if len(names) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", kind)
	} else {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", kind, strings.Join(names, ", "), placeholders)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify("create", kind, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify("create", kind, err)
	}
	return models.RecordID(id), nil
}

func (s *Store) Update(ctx context.Context, kind store.Kind, id models.RecordID, fields store.Fields) error {
	cols, err := columnsFor(kind)
	if err != nil {
		return err
	}

	names, args, err := assignments(cols, fields)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		var one int
		err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE id = ?", kind), int64(id)).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return &store.NotFoundError{Kind: kind, ID: id}
		}
		if err != nil {
			return classify("update", kind, err)
		}
		return nil
	}

	sets := make([]string, len(names))
	for i, n := range names {
		sets[i] = n + " = ?"
	}
	args = append(args, int64(id))

	res, err := s.db.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", kind, strings.Join(sets, ", ")), args...)
	if err != nil {
		return classify("update", kind, err)
	}
	return requireAffected(res, kind, id, "update")
}

func (s *Store) Delete(ctx context.Context, kind store.Kind, id models.RecordID) error {
	if _, err := columnsFor(kind); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", kind), int64(id))
	if err != nil {
		return classify("delete", kind, err)
	}
	return requireAffected(res, kind, id, "delete")
}

func columnsFor(kind store.Kind) ([]column, error) {
	if err := store.CheckKind(kind); err != nil {
		return nil, err
	}
	return tables[kind], nil
}

func lookupColumn(cols []column, name string) (column, bool) {
	for _, c := range cols {
		if c.name == name {
			return c, true
		}
	}
	return column{}, false
}

// assignments returns the column names and driver values of fields in
// a stable, schema-defined order.
func assignments(cols []column, fields store.Fields) ([]string, []any, error) {
	for key := range fields {
		if key == "id" {
			continue
		}
		if _, ok := lookupColumn(cols, key); !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
		}
	}

	var names []string
	var args []any
	for _, c := range cols {
		v, ok := fields[c.name]
		if !ok {
			continue
		}
		names = append(names, c.name)
		args = append(args, store.Normalize(v))
	}
	return names, args, nil
}

func whereClause(kind store.Kind, cols []column, filter store.Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	for key := range filter {
		if _, ok := lookupColumn(cols, key); !ok && key != "id" {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
		}
	}

	var conds []string
	var args []any
	if v, ok := filter["id"]; ok {
		id, err := models.ParseRecordID(v)
		if err != nil {
			return "", nil, fmt.Errorf("filter %s id: %w", kind, err)
		}
		conds = append(conds, "id = ?")
		args = append(args, int64(id))
	}
	for _, c := range cols {
		v, ok := filter[c.name]
		if !ok {
			continue
		}
		if v == nil {
			conds = append(conds, c.name+" IS NULL")
			continue
		}
		conds = append(conds, c.name+" = ?")
		args = append(args, store.Normalize(v))
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func scanRecord(rows *sql.Rows, cols []column) (store.Record, error) {
	var id int64
	dest := make([]any, 0, len(cols)+1)
	dest = append(dest, &id)
	for _, c := range cols {
		switch c.typ {
		case colInt:
			dest = append(dest, new(sql.NullInt64))
		case colTime:
			dest = append(dest, new(sql.NullTime))
		default:
			dest = append(dest, new(sql.NullString))
		}
	}

	if err := rows.Scan(dest...); err != nil {
		return store.Record{}, err
	}

	fields := make(store.Fields, len(cols))
	for i, c := range cols {
		switch v := dest[i+1].(type) {
		case *sql.NullInt64:
			if v.Valid {
				fields[c.name] = models.RecordID(v.Int64)
			} else {
				fields[c.name] = nil
			}
		case *sql.NullTime:
			if v.Valid {
				fields[c.name] = v.Time
			} else {
				fields[c.name] = nil
			}
		case *sql.NullString:
			if v.Valid {
				fields[c.name] = v.String
			} else {
				fields[c.name] = nil
			}
		}
	}
	return store.Record{ID: models.RecordID(id), Fields: fields}, nil
}

func requireAffected(res sql.Result, kind store.Kind, id models.RecordID, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, kind, err)
	}
	if n == 0 {
		return &store.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// classify maps driver failures onto the store error taxonomy. Busy and
// locked databases and I/O errors are transient, as is anything raised by
// database/sql itself (closed pool, bad connection, expired context). A
// foreign key violation means the owning prospect is gone.
func classify(op string, kind store.Kind, err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return &store.TransientIOError{Op: op, Kind: kind, Err: err}
	}
	switch sqliteErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrIoErr, sqlite3.ErrCantOpen, sqlite3.ErrFull:
		return &store.TransientIOError{Op: op, Kind: kind, Err: err}
	case sqlite3.ErrConstraint:
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return &store.NotFoundError{Kind: store.KindProspects}
		}
	}
	return fmt.Errorf("%s %s: %w: %w", op, kind, store.ErrRejected, err)
}
