package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoDocument is the stored shape: one Mongo document per collection key.
type mongoDocument struct {
	Key       string    `bson:"_id"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoBackend stores documents in the "documents" collection of a database.
type MongoBackend struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri and uses the named database.
func OpenMongo(ctx context.Context, uri, database string) (*MongoBackend, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(10 * time.Second)
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("store.OpenMongo: connect: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store.OpenMongo: ping: %w", err)
	}

	return &MongoBackend{
		client: client,
		coll:   client.Database(database).Collection("documents"),
	}, nil
}

func (b *MongoBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var doc mongoDocument
	err := b.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store.MongoBackend.Get: %w", err)
	}
	return []byte(doc.Body), nil
}

func (b *MongoBackend) Put(ctx context.Context, key string, data []byte) error {
	doc := mongoDocument{Key: key, Body: string(data), UpdatedAt: time.Now().UTC()}
	_, err := b.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store.MongoBackend.Put: %w", err)
	}
	return nil
}

func (b *MongoBackend) Keys(ctx context.Context) ([]string, error) {
	ids, err := b.coll.Distinct(ctx, "_id", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("store.MongoBackend.Keys: %w", err)
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if s, ok := id.(string); ok {
			keys = append(keys, s)
		}
	}
	return keys, nil
}

func (b *MongoBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}
