// Package mongostore provides a MongoDB implementation of the storage.Store interface.
//
// Squads live in the "squads" collection with their members embedded. Each
// squad's ledger is one document in the "ledgers" collection keyed by the
// squad id; its version field is the optimistic concurrency token.
package mongostore

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SquadsCollection  = "squads"
	LedgersCollection = "ledgers"
)

// ---- Abstractions for Testability ----

// Collection is the subset of *mongo.Collection the store uses.
type Collection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// CollectionProvider defines the interface for obtaining a collection.
type CollectionProvider interface {
	Collection(name string) Collection
}

// MongoProvider adapts *mongo.Client to CollectionProvider.
type MongoProvider struct {
	client *mongo.Client
	dbName string
}

// NewMongoProvider creates a new MongoProvider for the named database.
func NewMongoProvider(client *mongo.Client, dbName string) *MongoProvider {
	return &MongoProvider{client: client, dbName: dbName}
}

// Collection returns the named collection.
func (p *MongoProvider) Collection(name string) Collection {
	return p.client.Database(p.dbName).Collection(name)
}

// Connect establishes a connection to MongoDB.
func Connect(ctx context.Context, uri string, logger *slog.Logger) (*mongo.Client, error) {
	logger.DebugContext(ctx, "Attempting to connect to MongoDB")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.InfoContext(ctx, "Successfully established connection to MongoDB")
	return client, nil
}

// EnsureIndexes creates the secondary indexes the store queries by.
func EnsureIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	_, err := client.Database(dbName).Collection(SquadsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "members.id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create members index: %w", err)
	}
	return nil
}
