package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification represents a user notification stored in MongoDB. ActorName is
// frozen at dispatch time so the message stays stable if the actor renames.
// IsRead only ever transitions false to true.
type Notification struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RecipientID uint               `json:"recipient_id" bson:"recipient_id"`
	Kind        string             `json:"kind" bson:"kind"` // follow, like, laugh, comment
	ActorID     uint               `json:"actor_id" bson:"actor_id"`
	ActorName   string             `json:"actor_name" bson:"actor_name"`
	PostID      uint               `json:"post_id,omitempty" bson:"post_id,omitempty"` // zero for follow notifications
	Message     string             `json:"message" bson:"message"`
	IsRead      bool               `json:"is_read" bson:"is_read"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
