package repositories

import (
	"github.com/wavely-app/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the read-side interface for comments. Writes go
// through the relation store so the comment counter stays in step.
type CommentRepository interface {
	GetCommentsByPostID(postID uint, page, limit int) ([]models.Comment, int64, error)
}

type postgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new CommentRepository backed by PostgreSQL
func NewPostgresCommentRepository(db *gorm.DB) CommentRepository {
	return &postgresCommentRepository{db: db}
}

func (r *postgresCommentRepository) GetCommentsByPostID(postID uint, page, limit int) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	if err := r.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.Where("post_id = ?", postID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&comments).Error

	return comments, total, err
}
