package repositories

import (
	"context"

	"github.com/wavely-app/backend/internal/models"
	"gorm.io/gorm"
)

// RelationTx is the set of relation-store operations available inside a
// transaction. Counter adjustments go through here so that a relation row and
// its derived counter always commit (or roll back) together.
type RelationTx interface {
	GetUser(id uint) (*models.User, error)
	GetPost(id uint) (*models.Post, error)
	FollowExists(followerID, followingID uint) (bool, error)
	CreateFollow(follow *models.Follow) error
	DeleteFollow(followerID, followingID uint) error
	ReactionExists(userID, postID uint, kind models.ReactionKind) (bool, error)
	CreateReaction(reaction *models.Reaction) error
	DeleteReaction(userID, postID uint, kind models.ReactionKind) error
	CreateComment(comment *models.Comment) error
	AdjustUserCounter(userID uint, column string, delta int) error
	AdjustPostCounter(postID uint, column string, delta int) error
}

// RelationRepository defines the interface for relation data operations. The
// embedded RelationTx methods run auto-committed; Transact runs the given
// function inside a single database transaction.
type RelationRepository interface {
	RelationTx
	Transact(ctx context.Context, fn func(tx RelationTx) error) error
}

// Counter columns adjusted by the toggle transactions.
const (
	ColumnFollowerCount  = "follower_count"
	ColumnFollowingCount = "following_count"
	ColumnLikeCount      = "like_count"
	ColumnLaughCount     = "laugh_count"
	ColumnCommentCount   = "comment_count"
)

// PostgresRelationRepository implements RelationRepository for PostgreSQL
type PostgresRelationRepository struct {
	db *gorm.DB
}

// NewPostgresRelationRepository creates a new PostgresRelationRepository
func NewPostgresRelationRepository(db *gorm.DB) *PostgresRelationRepository {
	return &PostgresRelationRepository{db: db}
}

// Transact runs fn inside a database transaction. The RelationTx handed to fn
// is bound to that transaction, so any error aborts every write made through it.
func (r *PostgresRelationRepository) Transact(ctx context.Context, fn func(tx RelationTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRelationRepository{db: tx})
	})
}

func (r *PostgresRelationRepository) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRelationRepository) GetPost(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostgresRelationRepository) FollowExists(followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRelationRepository) CreateFollow(follow *models.Follow) error {
	return r.db.Create(follow).Error
}

func (r *PostgresRelationRepository) DeleteFollow(followerID, followingID uint) error {
	res := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresRelationRepository) ReactionExists(userID, postID uint, kind models.ReactionKind) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Reaction{}).Where("user_id = ? AND post_id = ? AND kind = ?", userID, postID, kind).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRelationRepository) CreateReaction(reaction *models.Reaction) error {
	return r.db.Create(reaction).Error
}

func (r *PostgresRelationRepository) DeleteReaction(userID, postID uint, kind models.ReactionKind) error {
	res := r.db.Where("user_id = ? AND post_id = ? AND kind = ?", userID, postID, kind).Delete(&models.Reaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresRelationRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// AdjustUserCounter applies a relative counter update so concurrent
// transactions on different subjects compose without read-modify-write races.
func (r *PostgresRelationRepository) AdjustUserCounter(userID uint, column string, delta int) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

func (r *PostgresRelationRepository) AdjustPostCounter(postID uint, column string, delta int) error {
	return r.db.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}
