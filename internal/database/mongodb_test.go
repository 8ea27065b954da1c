package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestIndexModelsCoverEveryCollection(t *testing.T) {
	models := IndexModels()

	for _, name := range []string{
		UsersCollection,
		DonationsCollection,
		RequestsCollection,
		FeedbackCollection,
		NotificationsCollection,
	} {
		assert.NotEmpty(t, models[name], name)
	}
}

func TestGeoIndexes(t *testing.T) {
	models := IndexModels()

	hasGeo := func(collection string) bool {
		for _, idx := range models[collection] {
			keys, ok := idx.Keys.(bson.D)
			if !ok {
				continue
			}
			for _, k := range keys {
				if k.Key == "location" && k.Value == "2dsphere" {
					return true
				}
			}
		}
		return false
	}

	assert.True(t, hasGeo(UsersCollection))
	assert.True(t, hasGeo(DonationsCollection))
}

func TestUniqueEmailIndex(t *testing.T) {
	for _, idx := range IndexModels()[UsersCollection] {
		keys := idx.Keys.(bson.D)
		if keys[0].Key == "email" {
			if assert.NotNil(t, idx.Options) && assert.NotNil(t, idx.Options.Unique) {
				assert.True(t, *idx.Options.Unique)
			}
			return
		}
	}
	t.Fatal("email index not found")
}
