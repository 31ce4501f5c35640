package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scourhq/scour/internal/types"
)

// MongoArchive mirrors admitted documents into a MongoDB collection.
// It is an optional sink: archive failures are logged by the caller and
// never affect the in-memory store.
type MongoArchive struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
	count      int
}

// NewMongoArchive connects to MongoDB and verifies the connection.
func NewMongoArchive(uri, database, collection string, logger *slog.Logger) (*MongoArchive, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoArchive{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_archive"),
	}, nil
}

// Archive inserts one admitted document. The content hash is the _id,
// so re-crawls of the same body are rejected as duplicate keys rather
// than archived twice.
func (a *MongoArchive) Archive(ctx context.Context, doc *types.Document) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	record := map[string]any{
		"_id":             doc.ContentHash,
		"url":             doc.URL,
		"domain":          doc.Domain,
		"title":           doc.Title,
		"body":            doc.Body,
		"word_count":      doc.WordCount,
		"heuristic_score": doc.HeuristicScore,
		"archived_at":     time.Now().UTC(),
	}
	if doc.PublishDate != nil {
		record["publish_date"] = *doc.PublishDate
	}

	if _, err := a.collection.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("mongodb insert: %w", err)
	}

	a.count++
	a.logger.Debug("document archived", "url", doc.URL, "total", a.count)
	return nil
}

// Close disconnects from MongoDB.
func (a *MongoArchive) Close() error {
	a.logger.Info("mongo archive closing", "total_documents", a.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.client.Disconnect(ctx)
}
