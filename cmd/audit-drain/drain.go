package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/rgehrsitz/withholding/internal/audit"
)

// drainer moves audit records from the SQS outbox into the durable store.
type drainer struct {
	sink audit.Sink
	log  *zap.Logger
}

// handle appends every record in the batch. Messages that fail are reported
// back so SQS redelivers only those; a body that cannot be decoded is also
// reported and ends up on the dead-letter queue after the redrive limit.
func (d *drainer) handle(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	d.log.Info("draining audit batch", zap.Int("message_count", len(event.Records)))

	var resp events.SQSEventResponse
	for _, msg := range event.Records {
		if err := d.drain(ctx, msg); err != nil {
			d.log.Error("audit message not stored",
				zap.String("message_id", msg.MessageId),
				zap.Error(err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: msg.MessageId,
			})
		}
	}

	d.log.Info("audit batch drained",
		zap.Int("stored", len(event.Records)-len(resp.BatchItemFailures)),
		zap.Int("failed", len(resp.BatchItemFailures)))
	return resp, nil
}

func (d *drainer) drain(ctx context.Context, msg events.SQSMessage) error {
	record, err := audit.DecodeQueuedRecord(msg.Body)
	if err != nil {
		return err
	}
	if err := d.sink.Append(ctx, record); err != nil {
		return err
	}
	d.log.Debug("audit record stored",
		zap.String("record_id", record.ID.String()),
		zap.String("employee_id", record.EmployeeID))
	return nil
}
