package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestNotificationStoreMarkAsRead(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("owner", func(mt *mtest.T) {
		s := NewNotificationStore(mt.Coll)
		id, userID := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "user_id", Value: userID},
			{Key: "is_read", Value: true},
		}}))

		n, err := s.MarkAsRead(context.Background(), id, userID)
		require.NoError(mt, err)
		assert.True(mt, n.IsRead)
	})

	mt.Run("someone else's", func(mt *mtest.T) {
		s := NewNotificationStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := s.MarkAsRead(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestNotificationStoreMarkAllAsRead(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("counts modified", func(mt *mtest.T) {
		s := NewNotificationStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 3},
			bson.E{Key: "nModified", Value: 3},
		))

		n, err := s.MarkAllAsRead(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})
}
