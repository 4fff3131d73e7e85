package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner runs fn so that the store writes it performs commit or abort together,
// where the backing store supports that.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DirectRunner runs fn without a transaction.
type DirectRunner struct{}

func (DirectRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MongoTxRunner wraps fn in a session transaction. Transactions need a replica set,
// so they are opt-in; when disabled fn runs directly.
type MongoTxRunner struct {
	Client  *mongo.Client
	Enabled bool
}

func (r *MongoTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.Enabled || r.Client == nil {
		return fn(ctx)
	}

	sess, err := r.Client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}
