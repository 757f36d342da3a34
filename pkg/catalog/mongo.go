package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/venuslab/glowup/pkg/types"
)

// styleDocument mirrors the catalog collection schema. Styles are
// curated by tag columns rather than a single tags array; the matching
// tags are derived from whichever columns are populated.
type styleDocument struct {
	ID          interface{} `bson:"_id,omitempty"`
	Style       string      `bson:"style,omitempty"`
	Name        string      `bson:"name,omitempty"`
	ImageURL    string      `bson:"image_url,omitempty"`
	FaceShape   string      `bson:"faceshape,omitempty"`
	ColorTone   string      `bson:"color_tone,omitempty"`
	Eyelid      string      `bson:"eyelid,omitempty"`
	Environment string      `bson:"environment,omitempty"`
	Description string      `bson:"description,omitempty"`
}

const placeholderImageURL = "https://via.placeholder.com/600x800?text=No+Image"

// MongoStore reads the style catalog from a MongoDB collection.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a store over the given collection.
func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

// ListStyles fetches every catalog document and maps it into a
// MakeupStyle with derived tags.
func (s *MongoStore) ListStyles(ctx context.Context) ([]types.MakeupStyle, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query style catalog: %w", err)
	}
	defer cursor.Close(ctx)

	var styles []types.MakeupStyle
	for cursor.Next(ctx) {
		var doc styleDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode style document: %w", err)
		}
		styles = append(styles, doc.toStyle())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("style catalog cursor error: %w", err)
	}

	return styles, nil
}

func (d styleDocument) toStyle() types.MakeupStyle {
	var tags []string
	for _, tag := range []string{d.FaceShape, d.ColorTone, d.Eyelid, d.Style, d.Environment} {
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	name := d.Style
	if name == "" {
		name = d.Name
	}
	if name == "" {
		name = "Unnamed Style"
	}

	imageURL := d.ImageURL
	if imageURL == "" {
		imageURL = placeholderImageURL
	}

	return types.MakeupStyle{
		ID:          fmt.Sprintf("%v", d.ID),
		Name:        name,
		ImageURL:    imageURL,
		Tags:        tags,
		Description: d.Description,
	}
}
