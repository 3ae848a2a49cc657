// Package store persists chat messages in a MongoDB document collection.
package store

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const messagesCollection = "messages"

// Store owns the Mongo client established at startup. Request handlers
// borrow it; pooling is left to the driver.
type Store struct {
	client   *mongo.Client
	messages *mongo.Collection
	log      *log.Logger
}

// New connects to Mongo and verifies the connection with a ping. Startup
// must abort if this fails.
func New(ctx context.Context, url, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	s := &Store{
		client:   client,
		messages: client.Database(database).Collection(messagesCollection),
		log:      log.New(log.Writer(), "[STORE] ", log.LstdFlags),
	}
	s.log.Printf("connected to mongo database %q", database)
	return s, nil
}

// Close tears down the client at shutdown.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// InsertMessage writes one message and returns it with its generated ID.
func (s *Store) InsertMessage(ctx context.Context, m Message) (Message, error) {
	res, err := s.messages.InsertOne(ctx, m)
	if err != nil {
		return Message{}, fmt.Errorf("inserting message: %w", err)
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		m.ID = id
	}
	return m, nil
}

// History returns all messages for the user, ascending by timestamp.
func (s *Store) History(ctx context.Context, userID string) ([]Message, error) {
	cur, err := s.messages.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer cur.Close(ctx)

	msgs := []Message{}
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	return msgs, nil
}

// DeleteHistory removes all messages for the user and reports how many were
// deleted. Zero deletions is a success, not an error.
func (s *Store) DeleteHistory(ctx context.Context, userID string) (int64, error) {
	res, err := s.messages.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("deleting history: %w", err)
	}
	return res.DeletedCount, nil
}
