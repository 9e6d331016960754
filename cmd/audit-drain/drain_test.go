package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/rgehrsitz/withholding/internal/audit"
	"github.com/rgehrsitz/withholding/internal/config"
	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/rgehrsitz/withholding/internal/mocks"
)

func queuedRecord(t *testing.T, employeeID string) (domain.AuditRecord, string) {
	t.Helper()
	req := domain.TaxCalculationRequest{
		EmployeeID:     employeeID,
		PayPeriodStart: domain.NewDate(2024, time.March, 1),
		PayPeriodEnd:   domain.NewDate(2024, time.March, 15),
		WorkLocations:  []domain.WorkLocationAllocation{{JurisdictionCode: "TX"}},
		ResidenceState: "TX",
	}
	record := domain.NewAuditRecord(req, domain.TaxCalculationResult{EmployeeID: employeeID}, nil,
		time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	body, err := json.Marshal(record)
	require.NoError(t, err)
	return record, string(body)
}

func TestDrainer_StoresBatch(t *testing.T) {
	store := audit.NewMemoryStore()
	d := &drainer{sink: store, log: zap.NewNop()}

	first, body1 := queuedRecord(t, "emp-1")
	_, body2 := queuedRecord(t, "emp-2")

	resp, err := d.handle(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "m1", Body: body1},
		{MessageId: "m2", Body: body2},
	}})
	require.NoError(t, err)
	assert.Empty(t, resp.BatchItemFailures)
	assert.Equal(t, 2, store.Len())

	records, err := store.ListByEmployee(context.Background(), "emp-1", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, []string{"TX"}, records[0].StatesInvolved)
}

func TestDrainer_RedeliveryIsIdempotent(t *testing.T) {
	store := audit.NewMemoryStore()
	d := &drainer{sink: store, log: zap.NewNop()}
	_, body := queuedRecord(t, "emp-1")

	event := events.SQSEvent{Records: []events.SQSMessage{{MessageId: "m1", Body: body}}}
	for i := 0; i < 2; i++ {
		resp, err := d.handle(context.Background(), event)
		require.NoError(t, err)
		assert.Empty(t, resp.BatchItemFailures)
	}
	assert.Equal(t, 1, store.Len())
}

func TestDrainer_ReportsFailedItems(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	d := &drainer{sink: sink, log: zap.NewNop()}

	_, good := queuedRecord(t, "emp-ok")
	_, failing := queuedRecord(t, "emp-db-down")

	sink.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r domain.AuditRecord) error {
			if r.EmployeeID == "emp-db-down" {
				return errors.New("connection refused")
			}
			return nil
		}).Times(2)

	resp, err := d.handle(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "ok", Body: good},
		{MessageId: "garbled", Body: "{not json"},
		{MessageId: "down", Body: failing},
	}})
	require.NoError(t, err)

	var failed []string
	for _, f := range resp.BatchItemFailures {
		failed = append(failed, f.ItemIdentifier)
	}
	assert.Equal(t, []string{"garbled", "down"}, failed)
}

func TestOpenDurableStore_RejectsQueue(t *testing.T) {
	_, err := openDurableStore(context.Background(), config.AuditSettings{Driver: config.AuditDriverSQS}, zap.NewNop())
	assert.ErrorContains(t, err, "durable audit driver")

	store, err := openDurableStore(context.Background(), config.AuditSettings{Driver: config.AuditDriverMemory}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, store.Lister)
	assert.NoError(t, store.Close())
}
