// Package mongo implements the store ports against MongoDB. Every operation
// runs behind a bulkhead and a circuit breaker with a per-operation timeout.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/infra/observability"
	"github.com/boddenberg/strike-crm/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/v2/bson"
	driver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("mongo")

const serviceName = "mongodb"

// Collection names are shared with existing deployments.
const (
	usersCollection      = "users"
	leadsCollection      = "leads"
	activitiesCollection = "activities"
	cardsCollection      = "business_cards"
)

// Options configures the store.
type Options struct {
	URL        string
	Database   string
	Timeout    time.Duration
	Resilience resilience.Config
}

// Store implements port.Store.
type Store struct {
	client   *driver.Client
	db       *driver.Database
	timeout  time.Duration
	cb       *gobreaker.CircuitBreaker
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// Connect dials MongoDB and pings the primary, retrying with backoff.
// This is the only retried operation; request-path calls fail fast.
func Connect(ctx context.Context, opts Options, metrics *observability.Metrics, logger *zap.Logger) (*Store, error) {
	client, err := driver.Connect(options.Client().
		ApplyURI(opts.URL).
		SetServerSelectionTimeout(opts.Timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	attempt := 0
	err = resilience.RetryWithBackoff(ctx, opts.Resilience, func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
			logger.Warn("mongo: ping failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("mongo: connected", zap.String("database", opts.Database))

	return &Store{
		client:   client,
		db:       client.Database(opts.Database),
		timeout:  opts.Timeout,
		cb:       resilience.NewCircuitBreaker(serviceName, logger, isSuccessful),
		bulkhead: resilience.NewBulkhead(opts.Resilience.MaxConcurrency),
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// Disconnect closes the connection pool.
func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks the primary is reachable. Used by /healthz.
func (s *Store) Ping(ctx context.Context) error {
	return s.exec(ctx, "admin", "Ping", func(ctx context.Context) error {
		return s.client.Ping(ctx, readpref.Primary())
	})
}

// EnsureIndexes creates the indexes the queries rely on. Idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		collection string
		model      driver.IndexModel
	}{
		{usersCollection, driver.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{leadsCollection, driver.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		}},
		{activitiesCollection, driver.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		}},
		{activitiesCollection, driver.IndexModel{
			Keys: bson.D{{Key: "lead_id", Value: 1}, {Key: "user_id", Value: 1}},
		}},
		{cardsCollection, driver.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		}},
	}

	for _, idx := range indexes {
		name, err := s.db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model)
		if err != nil {
			return fmt.Errorf("create index on %s: %w", idx.collection, err)
		}
		s.logger.Debug("mongo: index ready",
			zap.String("collection", idx.collection),
			zap.String("index", name),
		)
	}
	return nil
}

// isSuccessful keeps domain outcomes and caller cancellation from tripping the breaker.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var conflict *domain.ErrConflict
	return errors.As(err, &conflict) || errors.Is(err, context.Canceled)
}

// exec runs fn inside the bulkhead, the breaker and a per-operation timeout.
// Driver errors are counted, logged and wrapped in ErrExternalService.
func (s *Store) exec(ctx context.Context, collection, op string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "Mongo."+op)
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("db.collection", collection),
	)

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return err
	}
	defer s.bulkhead.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.cb.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: serviceName}
	}
	var conflict *domain.ErrConflict
	if errors.As(err, &conflict) {
		return err
	}

	span.RecordError(err)
	s.metrics.IncrStoreError(collection)
	s.logger.Error("mongo: operation failed",
		zap.String("collection", collection),
		zap.String("op", op),
		zap.Error(err),
	)
	return &domain.ErrExternalService{Service: serviceName, Err: err}
}

// ownedBy filters a document by id and owner.
func ownedBy(ownerID, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "user_id", Value: ownerID}}
}
