package store

import (
	"context"
	"fmt"
	"time"

	"github.com/raushankrgupta/club-feedback/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the handle to the feedback collection. Build one in main and pass it to handlers.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

// Connect opens a MongoDB client for uri. It does not ping; call Ping to verify the deployment.
func Connect(ctx context.Context, uri, databaseName, collectionName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	return New(client, databaseName, collectionName), nil
}

// New wraps an existing client.
func New(client *mongo.Client, databaseName, collectionName string) *Store {
	return &Store{
		client:     client,
		collection: client.Database(databaseName).Collection(collectionName),
		now:        time.Now,
	}
}

// NewWithCollection wraps an existing collection handle.
func NewWithCollection(collection *mongo.Collection) *Store {
	return &Store{
		client:     collection.Database().Client(),
		collection: collection,
		now:        time.Now,
	}
}

// Client returns the underlying mongo client.
func (s *Store) Client() *mongo.Client {
	return s.client
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return nil
}

// CreateFeedback inserts one document and returns it with its new id and timestamp.
// There is no idempotency key: identical inputs produce distinct documents.
func (s *Store) CreateFeedback(ctx context.Context, in models.FeedbackInput) (models.FeedbackEntry, error) {
	entry := models.NewFeedbackEntry(in, s.now())
	entry.ID = primitive.NewObjectID()

	if _, err := s.collection.InsertOne(ctx, entry); err != nil {
		return models.FeedbackEntry{}, fmt.Errorf("failed to save feedback: %w", err)
	}
	return entry, nil
}

// ListFeedback returns up to limit entries, newest first. A limit of 0 returns everything.
func (s *Store) ListFeedback(ctx context.Context, limit int64) ([]models.FeedbackEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.FeedbackEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode feedback: %w", err)
	}
	return entries, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
