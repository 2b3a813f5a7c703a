package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/gizmo_store/internal/cache"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CartsCollection = "carts"

type cartDocument struct {
	Key       string    `bson:"_id"`
	Blob      []byte    `bson:"blob"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoCartStore keeps serialized carts as one document per storage key.
type MongoCartStore struct {
	collection *mongo.Collection
}

var _ cache.Store = (*MongoCartStore)(nil)

func NewMongoCartStore(db *mongo.Database) *MongoCartStore {
	return &MongoCartStore{collection: db.Collection(CartsCollection)}
}

// CreateIndexes adds the updated_at index used to find stale carts.
func (s *MongoCartStore) CreateIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	return nil
}

func (s *MongoCartStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc cartDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cache.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return doc.Blob, nil
}

func (s *MongoCartStore) Set(ctx context.Context, key string, blob []byte) error {
	update := bson.M{"$set": bson.M{
		"blob":       blob,
		"updated_at": time.Now().UTC(),
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := s.collection.UpdateOne(ctx, bson.M{"_id": key}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}
