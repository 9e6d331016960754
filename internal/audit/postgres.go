package audit

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/rgehrsitz/withholding/internal/domain"
)

// pgExecutor is the subset of *pgxpool.Pool the store uses.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore writes audit records to the tax_calculation_audit table.
type PostgresStore struct {
	db pgExecutor
}

// NewPostgresStore creates a store over a pool or any compatible executor.
func NewPostgresStore(db pgExecutor) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgresPool parses dsn and connects a pool.
func OpenPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse database url")
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, "connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return pool, nil
}

const insertAuditSQL = `
INSERT INTO tax_calculation_audit
	(id, employee_id, action_type, request, result, states_involved, performed_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`

// Append implements Sink.
func (s *PostgresStore) Append(ctx context.Context, record domain.AuditRecord) error {
	request, result, err := encodePayloads(record)
	if err != nil {
		return err
	}
	states := record.StatesInvolved
	if states == nil {
		states = []string{}
	}
	_, err = s.db.Exec(ctx, insertAuditSQL,
		record.ID, record.EmployeeID, record.ActionType,
		request, result, states, record.PerformedBy, record.Timestamp.UTC(),
	)
	if err != nil {
		return errors.Wrapf(err, "insert audit record %s", record.ID)
	}
	return nil
}

const listAuditSQL = `
SELECT id, employee_id, action_type, request, result, states_involved, performed_by, created_at
FROM tax_calculation_audit
WHERE employee_id = $1
ORDER BY created_at DESC
LIMIT $2`

// ListByEmployee implements Lister, newest first. A non-positive limit
// returns every record.
func (s *PostgresStore) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.AuditRecord, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	rows, err := s.db.Query(ctx, listAuditSQL, employeeID, limitArg)
	if err != nil {
		return nil, errors.Wrap(err, "query audit records")
	}
	defer rows.Close()

	var out []domain.AuditRecord
	for rows.Next() {
		var (
			record          domain.AuditRecord
			request, result []byte
		)
		if err := rows.Scan(&record.ID, &record.EmployeeID, &record.ActionType, &request, &result,
			&record.StatesInvolved, &record.PerformedBy, &record.Timestamp); err != nil {
			return nil, errors.Wrap(err, "scan audit record")
		}
		if err := decodePayloads(&record, request, result); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, errors.Wrap(rows.Err(), "iterate audit records")
}
