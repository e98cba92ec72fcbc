package message

import (
	"context"
	"time"

	"dm-service/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "messages"

// Store is the durable append + ordered-range-query interface for messages.
type Store interface {
	// Append persists a new record, assigning its id and timestamp.
	Append(ctx context.Context, sender, recipient uint, text, file string) (*Message, error)
	// QueryBetween returns every message exchanged between two users,
	// ascending by creation time.
	QueryBetween(ctx context.Context, a, b uint) ([]Message, error)
}

type mongoStore struct {
	db *database.MongoDB
}

func NewStore(db *database.MongoDB) Store {
	return &mongoStore{db: db}
}

func (s *mongoStore) Append(ctx context.Context, sender, recipient uint, text, file string) (*Message, error) {
	msg := &Message{
		ID:        primitive.NewObjectID(),
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
		File:      file,
		CreatedAt: time.Now().UTC(),
	}

	coll := s.db.DB.Collection(collectionName)
	if _, err := coll.InsertOne(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *mongoStore) QueryBetween(ctx context.Context, a, b uint) ([]Message, error) {
	coll := s.db.DB.Collection(collectionName)
	filter := bson.M{
		"sender":    bson.M{"$in": []uint{a, b}},
		"recipient": bson.M{"$in": []uint{a, b}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var messages []Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
