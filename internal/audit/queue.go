package audit

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rgehrsitz/withholding/internal/domain"
)

// sqsAPI is the subset of *sqs.Client the queue sink uses.
type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// QueueSink publishes audit records to an SQS outbox. The audit-drain
// function consumes the queue and writes each record to Postgres; the
// record ID keeps redelivery idempotent.
type QueueSink struct {
	client   sqsAPI
	queueURL string
}

// NewQueueSink creates a sink that sends to queueURL.
func NewQueueSink(client sqsAPI, queueURL string) *QueueSink {
	return &QueueSink{client: client, queueURL: queueURL}
}

// Append implements Sink.
func (q *QueueSink) Append(ctx context.Context, record domain.AuditRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "encode audit record")
	}

	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"ActionType": {
				StringValue: aws.String(record.ActionType),
				DataType:    aws.String("String"),
			},
			"EmployeeID": {
				StringValue: aws.String(record.EmployeeID),
				DataType:    aws.String("String"),
			},
			"RecordID": {
				StringValue: aws.String(record.ID.String()),
				DataType:    aws.String("String"),
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to send audit record to SQS")
	}
	return nil
}

// DecodeQueuedRecord parses a message body produced by QueueSink.
func DecodeQueuedRecord(body string) (domain.AuditRecord, error) {
	var record domain.AuditRecord
	if err := json.Unmarshal([]byte(body), &record); err != nil {
		return domain.AuditRecord{}, errors.Wrap(err, "decode queued audit record")
	}
	if record.ID == uuid.Nil {
		return domain.AuditRecord{}, errors.New("queued audit record has no id")
	}
	if record.EmployeeID == "" {
		return domain.AuditRecord{}, errors.New("queued audit record has no employee id")
	}
	return record, nil
}
