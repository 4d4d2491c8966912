package bookshelf

import "go.mongodb.org/mongo-driver/v2/bson"

// Model is the base struct that bookshelf models embed.
// An ID is generated on insert when left zero.
type Model struct {
	ID bson.ObjectID `bson:"_id,omitempty"`
}
