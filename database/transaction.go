package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner runs fn as one unit of work. Transactional reports whether a
// failure inside fn rolls back the writes fn already made.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Transactional() bool
}

// MongoTxRunner runs fn inside a multi-document transaction. The context
// passed to fn carries the session, so repository calls made with it join
// the transaction. Requires a replica set or sharded cluster.
type MongoTxRunner struct {
	client *mongo.Client
}

func NewMongoTxRunner(client *mongo.Client) *MongoTxRunner {
	return &MongoTxRunner{client: client}
}

func (r *MongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

func (r *MongoTxRunner) Transactional() bool { return true }

// DirectRunner calls fn with ctx unchanged, for standalone servers that
// cannot run transactions. Callers must compensate on failure.
type DirectRunner struct{}

func (DirectRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (DirectRunner) Transactional() bool { return false }
