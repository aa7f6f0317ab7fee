package models

import "time"

// Follow represents an Instagram-style follow relationship. The composite
// unique index guarantees at most one edge per ordered (follower, followee)
// pair; self-edges are rejected before the row is ever written.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}
