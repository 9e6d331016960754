package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/rgehrsitz/withholding/internal/audit"
	"github.com/rgehrsitz/withholding/internal/config"
	"github.com/rgehrsitz/withholding/internal/logger"
)

func main() {
	settings, err := config.LoadSettings("")
	if err != nil {
		panic(err)
	}
	if err := logger.InitLogger(settings.Stage, settings.Log.Level); err != nil {
		panic(err)
	}
	log := logger.Log
	defer log.Sync() //nolint:errcheck

	store, err := openDurableStore(context.Background(), settings.Audit, log)
	if err != nil {
		log.Fatal("failed to open audit store", zap.Error(err))
	}
	defer store.Close()

	d := &drainer{sink: store.Sink, log: log}
	lambda.Start(d.handle)
}

// openDurableStore opens the store the drain writes into. The sqs driver is
// rejected because draining into the outbox would requeue every record.
func openDurableStore(ctx context.Context, settings config.AuditSettings, log *zap.Logger) (*audit.Store, error) {
	if settings.Driver == config.AuditDriverSQS {
		return nil, fmt.Errorf("audit-drain needs a durable audit driver, got %q", settings.Driver)
	}
	return audit.Open(ctx, settings, func(err error, wait time.Duration) {
		log.Warn("audit append failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	})
}
