package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// vertexDocument and edgeDocument are what actually lands in Mongo.
// Fields are kept flat (id/kind/fields) rather than one collection per
// vertex kind, since Assembly writes a handful of vertex kinds per poster
// and a single poster_vertices collection keeps that one round trip.
type vertexDocument struct {
	ID     string                 `bson:"_id"`
	Kind   string                 `bson:"kind"`
	Fields map[string]interface{} `bson:"fields"`
}

type edgeDocument struct {
	From         string                 `bson:"from"`
	To           string                 `bson:"to"`
	RelationType string                 `bson:"relationType"`
	Confidence   float64                `bson:"confidence"`
	Metadata     map[string]interface{} `bson:"metadata,omitempty"`
}

// MongoGraphStore is the Mongo-backed EntityService/RelationService: two
// collections, poster_vertices and poster_edges, following the same
// one-collection-per-repository shape as this module's other Mongo
// repositories, generalized to a graph's two structures instead of one
// document type.
type MongoGraphStore struct {
	vertices *mongo.Collection
	edges    *mongo.Collection
}

// NewMongoGraphStore builds a graph store against db's poster_vertices and
// poster_edges collections.
func NewMongoGraphStore(db *mongo.Database) *MongoGraphStore {
	return &MongoGraphStore{
		vertices: db.Collection("poster_vertices"),
		edges:    db.Collection("poster_edges"),
	}
}

// EnsureIndexes creates the indexes the graph store's queries depend on:
// a text index on fields.name for FindByName and a kind index for
// per-kind lookups, plus an index on edges.from for traversal.
func (s *MongoGraphStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.vertices.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "kind", Value: 1}}},
		{Keys: bson.D{{Key: "fields.name", Value: "text"}}},
	}); err != nil {
		return fmt.Errorf("graphstore: ensure vertex indexes: %w", err)
	}
	if _, err := s.edges.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "from", Value: 1}}},
		{Keys: bson.D{{Key: "to", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("graphstore: ensure edge indexes: %w", err)
	}
	return nil
}

func (s *MongoGraphStore) GetEntity(ctx context.Context, id string) (Entity, bool, error) {
	var doc vertexDocument
	err := s.vertices.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return Entity{}, false, nil
	}
	if err != nil {
		return Entity{}, false, fmt.Errorf("graphstore: get entity %s: %w", id, err)
	}
	return Entity{ID: doc.ID, Kind: doc.Kind, Fields: doc.Fields}, true, nil
}

// CreateEntities upserts each entity by id (create-if-absent, update
// fields on conflict) and reports which ids were newly created. Each
// entity is attempted independently so a failure on one doesn't prevent
// the caller from learning which of the rest succeeded — Assembly's
// asymmetric failure rule (a secondary entity write failing must not fail
// the whole phase once the Poster vertex itself is persisted) depends on
// this partial result surviving an error return.
func (s *MongoGraphStore) CreateEntities(ctx context.Context, entities []Entity) (map[string]bool, error) {
	isNew := make(map[string]bool, len(entities))
	var firstErr error

	for _, e := range entities {
		doc := vertexDocument{ID: e.ID, Kind: e.Kind, Fields: e.Fields}
		result, err := s.vertices.ReplaceOne(ctx, bson.M{"_id": e.ID}, doc, options.Replace().SetUpsert(true))
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("graphstore: upsert entity %s: %w", e.ID, err)
			}
			continue
		}
		isNew[e.ID] = result.UpsertedCount > 0
	}

	return isNew, firstErr
}

func (s *MongoGraphStore) FindByName(ctx context.Context, kind, query string) ([]Entity, error) {
	cursor, err := s.vertices.Find(ctx, bson.M{"kind": kind, "$text": bson.M{"$search": query}})
	if err != nil {
		return nil, fmt.Errorf("graphstore: find by name: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []vertexDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("graphstore: decode find by name: %w", err)
	}

	entities := make([]Entity, 0, len(docs))
	for _, d := range docs {
		entities = append(entities, Entity{ID: d.ID, Kind: d.Kind, Fields: d.Fields})
	}
	return entities, nil
}

// CreateRelations inserts every relation, attempting each independently
// for the same partial-success reason CreateEntities does.
func (s *MongoGraphStore) CreateRelations(ctx context.Context, relations []Relation) error {
	if len(relations) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(relations))
	for _, r := range relations {
		docs = append(docs, edgeDocument{
			From:         r.From,
			To:           r.To,
			RelationType: r.RelationType,
			Confidence:   r.Confidence,
			Metadata:     r.Metadata,
		})
	}
	_, err := s.edges.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("graphstore: insert relations: %w", err)
	}
	return nil
}
