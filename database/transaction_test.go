package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoTxRunner(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("callback runs in a session transaction", func(mt *mtest.T) {
		runner := NewMongoTxRunner(mt.Client)
		assert.True(mt, runner.Transactional())

		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		mt.ClearEvents()

		err := runner.WithTransaction(context.Background(), func(ctx context.Context) error {
			_, ok := ctx.(mongo.SessionContext)
			assert.True(mt, ok)
			require.NotNil(mt, mongo.SessionFromContext(ctx))

			_, err := mt.Coll.InsertOne(ctx, bson.D{{Key: "name", Value: "lamp"}})
			return err
		})
		require.NoError(mt, err)

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 2)
		assert.Equal(mt, "insert", events[0].CommandName)
		started, ok := events[0].Command.Lookup("startTransaction").BooleanOK()
		assert.True(mt, ok && started)
		_, hasSession := events[0].Command.Lookup("lsid").DocumentOK()
		assert.True(mt, hasSession)
		assert.Equal(mt, "commitTransaction", events[1].CommandName)
	})

	mt.Run("callback error is returned wrapped", func(mt *mtest.T) {
		runner := NewMongoTxRunner(mt.Client)
		errOutOfStock := errors.New("out of stock")

		err := runner.WithTransaction(context.Background(), func(ctx context.Context) error {
			return errOutOfStock
		})
		require.Error(mt, err)
		assert.ErrorIs(mt, err, errOutOfStock)
		assert.Contains(mt, err.Error(), "transaction failed")
	})
}

func TestDirectRunnerPassesContextThrough(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	var runner TxRunner = DirectRunner{}
	assert.False(t, runner.Transactional())

	errBoom := errors.New("boom")
	err := runner.WithTransaction(ctx, func(got context.Context) error {
		assert.Equal(t, "v", got.Value(key{}))
		assert.Nil(t, mongo.SessionFromContext(got))
		return errBoom
	})
	assert.Same(t, errBoom, err)
}
