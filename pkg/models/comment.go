package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Comment lives in MongoDB, keyed by manga id.
type Comment struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string        `json:"user_id" bson:"user_id"`
	Username  string        `json:"username" bson:"username"`
	MangaID   int64         `json:"manga_id" bson:"manga_id"`
	Text      string        `json:"text" bson:"text"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}
