// Package history persists completed try-on looks per user.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/venuslab/glowup/pkg/types"
)

// Store is an append-only record of finished try-ons.
type Store interface {
	Save(ctx context.Context, userID, imageURL, styleName string) (*types.TryOnRecord, error)
	List(ctx context.Context, userID string) ([]types.TryOnRecord, error)
}

type record struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	ImageURL  string    `bson:"processed_image_url"`
	StyleName string    `bson:"style_name"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoStore keeps try-on records in a MongoDB collection.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore wraps the given collection.
func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

// Save appends one completed look.
func (s *MongoStore) Save(ctx context.Context, userID, imageURL, styleName string) (*types.TryOnRecord, error) {
	rec := record{
		ID:        uuid.NewString(),
		UserID:    userID,
		ImageURL:  imageURL,
		StyleName: styleName,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.collection.InsertOne(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save try-on record: %w", err)
	}
	out := toRecord(rec)
	return &out, nil
}

// List returns the user's saved looks, latest first.
func (s *MongoStore) List(ctx context.Context, userID string) ([]types.TryOnRecord, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch try-on history: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []record
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode try-on history: %w", err)
	}

	records := make([]types.TryOnRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, toRecord(doc))
	}
	return records, nil
}

func toRecord(doc record) types.TryOnRecord {
	return types.TryOnRecord{
		ID:        doc.ID,
		ImageURL:  doc.ImageURL,
		StyleName: doc.StyleName,
		CreatedAt: doc.CreatedAt.Format(time.RFC3339),
	}
}
