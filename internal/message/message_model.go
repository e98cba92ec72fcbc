package message

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one persisted unit of communication. Records are immutable
// once written; the store assigns ID and CreatedAt exactly once.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Sender    uint               `bson:"sender" json:"sender"`
	Recipient uint               `bson:"recipient" json:"recipient"`
	Text      string             `bson:"text,omitempty" json:"text,omitempty"`
	File      string             `bson:"file,omitempty" json:"file,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
