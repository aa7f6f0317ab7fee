package models

import "time"

// Post represents a post row. Like the User counters, LikeCount, LaughCount
// and CommentCount mirror the reaction and comment tables row-for-row.
type Post struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"index"` // ID of the user who owns the post
	Content      string    `json:"content"`
	LikeCount    int       `json:"like_count" gorm:"not null;default:0"`
	LaughCount   int       `json:"laugh_count" gorm:"not null;default:0"`
	CommentCount int       `json:"comment_count" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
