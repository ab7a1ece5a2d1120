package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setupGraphStoreTestDB(t *testing.T) *mongo.Database {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://localhost:27017"))
	require.NoError(t, err)

	db := client.Database("test_extractioncore_graphstore")
	db.Collection("poster_vertices").Drop(ctx)
	db.Collection("poster_edges").Drop(ctx)

	t.Cleanup(func() {
		db.Collection("poster_vertices").Drop(ctx)
		db.Collection("poster_edges").Drop(ctx)
		client.Disconnect(ctx)
	})

	return db
}

func TestMongoGraphStore_CreateAndGetEntity(t *testing.T) {
	db := setupGraphStoreTestDB(t)
	store := NewMongoGraphStore(db)
	ctx := context.Background()

	entity := Entity{ID: "artist:boris", Kind: "Artist", Fields: map[string]interface{}{"name": "Boris"}}
	isNew, err := store.CreateEntities(ctx, []Entity{entity})
	require.NoError(t, err)
	assert.True(t, isNew["artist:boris"])

	got, ok, err := store.GetEntity(ctx, "artist:boris")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Boris", got.Fields["name"])
}

func TestMongoGraphStore_GetEntity_MissingReturnsFalse(t *testing.T) {
	db := setupGraphStoreTestDB(t)
	store := NewMongoGraphStore(db)

	_, ok, err := store.GetEntity(context.Background(), "artist:nobody")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMongoGraphStore_CreateEntities_SecondCallIsNotNew(t *testing.T) {
	db := setupGraphStoreTestDB(t)
	store := NewMongoGraphStore(db)
	ctx := context.Background()
	entity := Entity{ID: "venue:the-forum", Kind: "Venue", Fields: map[string]interface{}{"name": "The Forum"}}

	isNew, err := store.CreateEntities(ctx, []Entity{entity})
	require.NoError(t, err)
	assert.True(t, isNew["venue:the-forum"])

	isNewAgain, err := store.CreateEntities(ctx, []Entity{entity})
	require.NoError(t, err)
	assert.False(t, isNewAgain["venue:the-forum"])
}

func TestMongoGraphStore_CreateRelationsAndFindByName(t *testing.T) {
	db := setupGraphStoreTestDB(t)
	store := NewMongoGraphStore(db)
	require.NoError(t, store.EnsureIndexes(context.Background()))
	ctx := context.Background()

	_, err := store.CreateEntities(ctx, []Entity{{ID: "artist:boris", Kind: "Artist", Fields: map[string]interface{}{"name": "Boris"}}})
	require.NoError(t, err)

	err = store.CreateRelations(ctx, []Relation{{From: "poster:1", To: "artist:boris", RelationType: "HEADLINED_ON", Confidence: 0.9}})
	require.NoError(t, err)

	matches, err := store.FindByName(ctx, "Artist", "Boris")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "artist:boris", matches[0].ID)
}

func TestMongoGraphStore_CreateRelations_EmptyIsNoop(t *testing.T) {
	db := setupGraphStoreTestDB(t)
	store := NewMongoGraphStore(db)

	err := store.CreateRelations(context.Background(), nil)

	assert.NoError(t, err)
}
