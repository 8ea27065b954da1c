package store

import (
	"context"
	"testing"
	"time"

	"sharebite/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func donationDoc(id primitive.ObjectID, qty int, status string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "donor_id", Value: primitive.NewObjectID()},
		{Key: "food_name", Value: "Rice"},
		{Key: "quantity", Value: qty},
		{Key: "status", Value: status},
	}
}

func TestDonationStoreReserve(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decrements and keeps active", func(mt *mtest.T) {
		s := NewDonationStore(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: donationDoc(id, 4, models.DonationStatusActive)},
		))

		donation, err := s.Reserve(context.Background(), id, 6)
		require.NoError(mt, err)
		assert.Equal(mt, 4, donation.Quantity)
		assert.Equal(mt, models.DonationStatusActive, donation.Status)
	})

	mt.Run("no matching document means insufficient quantity", func(mt *mtest.T) {
		s := NewDonationStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := s.Reserve(context.Background(), primitive.NewObjectID(), 5)
		assert.ErrorIs(mt, err, ErrInsufficientQuantity)
	})

	mt.Run("server error is wrapped", func(mt *mtest.T) {
		s := NewDonationStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
		}))

		_, err := s.Reserve(context.Background(), primitive.NewObjectID(), 1)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrInsufficientQuantity)
	})
}

func TestDonationStoreListActive(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes cursor", func(mt *mtest.T) {
		s := NewDonationStore(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
			donationDoc(primitive.NewObjectID(), 3, models.DonationStatusActive),
			donationDoc(primitive.NewObjectID(), 1, models.DonationStatusActive),
		)
		end := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, end)

		donations, err := s.ListActive(context.Background(), time.Now(), nil)
		require.NoError(mt, err)
		assert.Len(mt, donations, 2)
	})
}

func TestActiveDonationsFilter(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	filter := activeDonationsFilter(now, nil)
	assert.Equal(t, models.DonationStatusActive, filter["status"])
	assert.Equal(t, bson.M{"$gte": now}, filter["expiry_time"])
	assert.NotContains(t, filter, "location")

	filter = activeDonationsFilter(now, &Area{Lat: 12.9, Lng: 77.6, RadiusKm: 6.3781})
	geo := filter["location"].(bson.M)["$geoWithin"].(bson.M)["$centerSphere"].(bson.A)
	assert.Equal(t, bson.A{77.6, 12.9}, geo[0])
	assert.InDelta(t, 0.001, geo[1].(float64), 1e-9)
}

func TestReserveUpdatePipeline(t *testing.T) {
	pipeline := reserveUpdate(3, time.Now())
	require.Len(t, pipeline, 2)

	// The status stage must run after the decrement so it sees the new quantity.
	first := pipeline[0][0]
	assert.Equal(t, "$set", first.Key)
	assert.Equal(t, "quantity", first.Value.(bson.D)[0].Key)

	second := pipeline[1][0].Value.(bson.D)[0]
	assert.Equal(t, "status", second.Key)
}

func TestDonationStoreCreateAssignsID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		s := NewDonationStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		donation := &models.Donation{ID: primitive.NewObjectID(), FoodName: "Bread", Quantity: 2}
		want := donation.ID
		require.NoError(mt, s.Create(context.Background(), donation))
		assert.Equal(mt, want, donation.ID)
	})
}
