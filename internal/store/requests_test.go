package store

import (
	"context"
	"testing"

	"sharebite/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestRequestStoreTransition(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("pending to approved", func(mt *mtest.T) {
		s := NewRequestStore(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "people_count", Value: 2},
			{Key: "status", Value: models.RequestStatusApproved},
		}}))

		request, err := s.Transition(context.Background(), id, models.RequestStatusPending, models.RequestStatusApproved)
		require.NoError(mt, err)
		assert.Equal(mt, models.RequestStatusApproved, request.Status)
		assert.Equal(mt, id, request.ID)
	})

	mt.Run("already decided", func(mt *mtest.T) {
		s := NewRequestStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := s.Transition(context.Background(), primitive.NewObjectID(), models.RequestStatusPending, models.RequestStatusDeclined)
		assert.ErrorIs(mt, err, ErrStatusConflict)
	})
}

func TestRequestStoreFindByIDNotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing", func(mt *mtest.T) {
		s := NewRequestStore(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.FindByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}
