package audit

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rgehrsitz/withholding/internal/domain"
)

// MemoryStore keeps records in process memory. It backs tests and the
// "memory" audit driver. Records are copied on the way in and out so callers
// cannot alter what was stored.
type MemoryStore struct {
	mu      sync.RWMutex
	records []domain.AuditRecord
	ids     map[uuid.UUID]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[uuid.UUID]struct{})}
}

// Append implements Sink.
func (m *MemoryStore) Append(ctx context.Context, record domain.AuditRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.ids[record.ID]; dup {
		return nil
	}
	m.ids[record.ID] = struct{}{}
	m.records = append(m.records, record.Clone())
	return nil
}

// ListByEmployee implements Lister, newest first.
func (m *MemoryStore) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.AuditRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.AuditRecord
	for _, r := range m.records {
		if r.EmployeeID == employeeID {
			out = append(out, r.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Records returns a copy of every stored record in insertion order.
func (m *MemoryStore) Records() []domain.AuditRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.AuditRecord, len(m.records))
	for i, r := range m.records {
		out[i] = r.Clone()
	}
	return out
}
