// Package audit persists the append-only compliance trail of withholding
// calculations.
//
// Records are only ever inserted. Every store keys rows by the record's
// generated ID and ignores a second insert of the same ID, so redelivery
// from the outbox queue cannot duplicate an entry.
package audit

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rgehrsitz/withholding/internal/domain"
)

//go:generate mockgen -source=sink.go -destination=../mocks/mock_sink.go -package=mocks

// Sink appends audit records. Implementations must be safe for concurrent
// use.
type Sink interface {
	Append(ctx context.Context, record domain.AuditRecord) error
}

// Lister reads back records for operators. The engine never reads the trail.
type Lister interface {
	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.AuditRecord, error)
}

// Discard is a Sink that drops every record. It backs dry runs from the CLI.
type Discard struct{}

// Append implements Sink.
func (Discard) Append(context.Context, domain.AuditRecord) error { return nil }

// encodePayloads marshals the request and result columns of a record.
func encodePayloads(record domain.AuditRecord) (request, result []byte, err error) {
	request, err = json.Marshal(record.Request)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encode audit request")
	}
	result, err = json.Marshal(record.Result)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encode audit result")
	}
	return request, result, nil
}

// decodePayloads is the inverse of encodePayloads.
func decodePayloads(record *domain.AuditRecord, request, result []byte) error {
	if err := json.Unmarshal(request, &record.Request); err != nil {
		return errors.Wrap(err, "decode audit request")
	}
	if err := json.Unmarshal(result, &record.Result); err != nil {
		return errors.Wrap(err, "decode audit result")
	}
	return nil
}
