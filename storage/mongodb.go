package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wrenbin/wrenbin/models"
)

// MongoStore implements PasteStore using MongoDB. The paste key is the
// document _id, so uniqueness rides on the collection's primary index,
// and a TTL index on expires_at reclaims expired documents in the
// background. Every read still re-checks expiry because the TTL sweep
// runs on its own schedule.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore creates a new MongoDB storage backend.
func NewMongoStore(uri, dbName, collName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	store := &MongoStore{
		client:     client,
		collection: client.Database(dbName).Collection(collName),
	}
	if err := store.createIndexes(); err != nil {
		return nil, err
	}
	return store, nil
}

// createIndexes sets up the TTL index for auto-expiration.
func (m *MongoStore) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ttlIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	_, err := m.collection.Indexes().CreateOne(ctx, ttlIndex)
	return err
}

// Store saves a paste. A duplicate _id means the slot is occupied; the
// insert is retried as a conditional replace that only matches an
// expired occupant, so a live paste is never overwritten.
func (m *MongoStore) Store(paste *models.Paste) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := m.collection.InsertOne(ctx, paste)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}

	// expires_at $lt now never matches documents without the field, so
	// never-expiring occupants keep their slot.
	filter := bson.M{
		"_id":        paste.Key,
		"expires_at": bson.M{"$lt": time.Now()},
	}
	result, err := m.collection.ReplaceOne(ctx, filter, paste)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return ErrKeyCollision
	}
	return nil
}

// Get retrieves a paste without consuming it.
func (m *MongoStore) Get(key string) (*models.Paste, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var paste models.Paste
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&paste)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	if paste.IsExpired() {
		// TTL sweep has not caught up yet; reclaim now.
		_ = m.Delete(key)
		return nil, ErrExpired
	}
	return &paste, nil
}

// GetAndBurn retrieves a paste for the view path. Burn pastes are
// consumed with a single FindOneAndDelete, so concurrent viewers race on
// one atomic document removal and only the winner gets the content.
func (m *MongoStore) GetAndBurn(key string) (*models.Paste, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": key, "burn_after_reading": true}
	var paste models.Paste
	err := m.collection.FindOneAndDelete(ctx, filter).Decode(&paste)
	if err == nil {
		if paste.IsExpired() {
			// Already removed; just report it as expired.
			return nil, ErrExpired
		}
		return &paste, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// Not a burn paste (or absent): plain lookup.
	return m.Get(key)
}

// Delete removes a paste.
func (m *MongoStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := m.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// PurgeExpired removes expired pastes ahead of the TTL sweep.
func (m *MongoStore) PurgeExpired() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := m.collection.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": time.Now()},
	})
	if err != nil {
		return 0, err
	}
	return int(result.DeletedCount), nil
}

// Close closes the MongoDB connection.
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return m.client.Disconnect(ctx)
}
