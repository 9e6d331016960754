package audit

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/pkg/errors"
	"github.com/rgehrsitz/withholding/internal/config"
)

// Store is an opened audit backend. Lister is nil for write-only backends
// such as the SQS outbox.
type Store struct {
	Sink   Sink
	Lister Lister
	Driver string
	close  func() error
}

// Close releases the backend's connections.
func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects the backend selected by settings and wraps its sink in a
// RetryingSink. The memory driver is not retried.
func Open(ctx context.Context, settings config.AuditSettings, onRetry func(err error, wait time.Duration)) (*Store, error) {
	var store *Store
	switch settings.Driver {
	case config.AuditDriverMemory:
		mem := NewMemoryStore()
		return &Store{Sink: mem, Lister: mem, Driver: settings.Driver}, nil

	case config.AuditDriverSQLite:
		s, err := OpenSQLite(settings.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = &Store{Sink: s, Lister: s, close: s.Close}

	case config.AuditDriverPostgres:
		if err := MigratePostgres(settings.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := OpenPostgresPool(ctx, settings.DatabaseURL)
		if err != nil {
			return nil, err
		}
		pg := NewPostgresStore(pool)
		store = &Store{Sink: pg, Lister: pg, close: func() error { pool.Close(); return nil }}

	case config.AuditDriverSQS:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "load aws config")
		}
		store = &Store{Sink: NewQueueSink(sqs.NewFromConfig(awsCfg), settings.QueueURL)}

	default:
		return nil, fmt.Errorf("unknown audit driver %q", settings.Driver)
	}

	store.Driver = settings.Driver
	store.Sink = NewRetryingSink(store.Sink, RetryConfigFromSettings(settings), onRetry)
	return store, nil
}

// RetryConfigFromSettings overlays configured retry values on the defaults.
func RetryConfigFromSettings(settings config.AuditSettings) RetryConfig {
	rc := DefaultRetryConfig()
	rc.MaxRetries = settings.MaxRetries
	if settings.InitialInterval > 0 {
		rc.InitialInterval = settings.InitialInterval
	}
	if settings.Timeout > 0 {
		rc.Timeout = settings.Timeout
	}
	return rc
}
