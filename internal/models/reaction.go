package models

import "time"

// ReactionKind enumerates the toggleable reactions a post supports.
type ReactionKind string

const (
	ReactionLike  ReactionKind = "like"
	ReactionLaugh ReactionKind = "laugh"
)

// Valid reports whether the kind is one of the known reactions.
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionLaugh
}

// Reaction represents a single user's reaction to a post. At most one row
// exists per (post, user, kind) tuple, enforced by the composite unique index.
type Reaction struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	PostID    uint         `json:"post_id" gorm:"index;uniqueIndex:idx_post_user_kind"`
	UserID    uint         `json:"user_id" gorm:"uniqueIndex:idx_post_user_kind"`
	Kind      ReactionKind `json:"kind" gorm:"size:10;uniqueIndex:idx_post_user_kind"`
	CreatedAt time.Time    `json:"created_at"`
}
