package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rgehrsitz/withholding/internal/domain"
)

// sqliteTimeLayout is fixed width so created_at sorts as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore writes audit records to a local SQLite file. It serves the CLI
// and single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite migrates and opens the audit database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := MigrateSQLite(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite audit store")
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append implements Sink.
func (s *SQLiteStore) Append(ctx context.Context, record domain.AuditRecord) error {
	request, result, err := encodePayloads(record)
	if err != nil {
		return err
	}
	states, err := json.Marshal(record.StatesInvolved)
	if err != nil {
		return errors.Wrap(err, "encode states involved")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO tax_calculation_audit
			(id, employee_id, action_type, request, result, states_involved, performed_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID.String(), record.EmployeeID, record.ActionType,
		string(request), string(result), string(states),
		nullString(record.PerformedBy), record.Timestamp.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return errors.Wrapf(err, "insert audit record %s", record.ID)
	}
	return nil
}

// ListByEmployee implements Lister, newest first.
func (s *SQLiteStore) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.AuditRecord, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, action_type, request, result, states_involved, performed_by, created_at
		FROM tax_calculation_audit
		WHERE employee_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, employeeID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query audit records")
	}
	defer rows.Close()

	var out []domain.AuditRecord
	for rows.Next() {
		var (
			id, request, result, states, createdAt string
			performedBy                            sql.NullString
			record                                 domain.AuditRecord
		)
		if err := rows.Scan(&id, &record.EmployeeID, &record.ActionType, &request, &result, &states, &performedBy, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan audit record")
		}
		if record.ID, err = uuid.Parse(id); err != nil {
			return nil, errors.Wrapf(err, "parse audit id %q", id)
		}
		if err := decodePayloads(&record, []byte(request), []byte(result)); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(states), &record.StatesInvolved); err != nil {
			return nil, errors.Wrap(err, "decode states involved")
		}
		if performedBy.Valid {
			v := performedBy.String
			record.PerformedBy = &v
		}
		if record.Timestamp, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
			return nil, errors.Wrapf(err, "parse audit timestamp %q", createdAt)
		}
		out = append(out, record)
	}
	return out, errors.Wrap(rows.Err(), "iterate audit records")
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
