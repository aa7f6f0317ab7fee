package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents an account row. Counters are derived state: each one must
// always equal the cardinality of the matching relation table, so they are
// only ever adjusted inside the same transaction that touches those rows.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name"`
	Email          string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	FollowerCount  int       `json:"follower_count" gorm:"not null;default:0"`
	FollowingCount int       `json:"following_count" gorm:"not null;default:0"`
	PostCount      int       `json:"post_count" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserCompact is the trimmed representation embedded in API responses.
type UserCompact struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ToCompact converts a User to its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name}
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
