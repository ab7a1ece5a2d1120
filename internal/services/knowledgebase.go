package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoKnowledgeBase searches already-assembled poster vertices by free
// text, backing Type's validation bonus and Event's plausibility checks.
// It reuses poster_vertices rather than a dedicated collection — the
// knowledge base this phase searches is exactly the graph Assembly has
// already written.
type MongoKnowledgeBase struct {
	collection *mongo.Collection
	cache      *redis.Client
	cacheTTL   time.Duration
}

// NewMongoKnowledgeBase builds a search layer over db's poster_vertices
// collection. cache may be nil, in which case every search hits Mongo.
func NewMongoKnowledgeBase(db *mongo.Database, cache *redis.Client, cacheTTL time.Duration) *MongoKnowledgeBase {
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}
	return &MongoKnowledgeBase{
		collection: db.Collection("poster_vertices"),
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

func (k *MongoKnowledgeBase) Search(ctx context.Context, text string, opts SearchOptions) ([]ScoredEntity, error) {
	cacheKey := k.cacheKey(text, opts)
	if k.cache != nil {
		if cached, err := k.cache.Get(ctx, cacheKey).Result(); err == nil {
			var hits []ScoredEntity
			if jsonErr := json.Unmarshal([]byte(cached), &hits); jsonErr == nil {
				return hits, nil
			}
		}
	}

	query := bson.M{"$text": bson.M{"$search": text}}
	if len(opts.EntityTypes) > 0 {
		query["kind"] = bson.M{"$in": opts.EntityTypes}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	findOpts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetLimit(int64(limit))

	cursor, err := k.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("knowledgebase: search: %w", err)
	}
	defer cursor.Close(ctx)

	var raw []struct {
		ID     string  `bson:"_id"`
		Score  float64 `bson:"score"`
		Fields struct {
			Observations []string `bson:"observations"`
			PosterType   string   `bson:"posterType"`
		} `bson:"fields"`
	}
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("knowledgebase: decode search results: %w", err)
	}

	hits := make([]ScoredEntity, 0, len(raw))
	for _, r := range raw {
		hits = append(hits, ScoredEntity{
			ID:           r.ID,
			Score:        r.Score,
			Observations: r.Fields.Observations,
			PosterType:   r.Fields.PosterType,
		})
	}

	if k.cache != nil {
		if encoded, err := json.Marshal(hits); err == nil {
			k.cache.Set(ctx, cacheKey, encoded, k.cacheTTL)
		}
	}

	return hits, nil
}

func (k *MongoKnowledgeBase) cacheKey(text string, opts SearchOptions) string {
	return fmt.Sprintf("kbsearch:%s:%v:%d", text, opts.EntityTypes, opts.Limit)
}
