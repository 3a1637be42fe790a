package repositories

import (
	"github.com/mrskaggs/forkful/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	WithTx(tx *gorm.DB) CommentRepository
	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint) (*models.Comment, error)
	ListTopLevel(recipeID uint, offset, limit int) ([]models.Comment, error)
	CountTopLevel(recipeID uint) (int64, error)
	ListReplies(recipeID uint) ([]models.Comment, error)
	UpdateComment(comment *models.Comment) error
	DeleteComment(id uint) error
	SetModeration(id uint, moderated bool, adminID uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *PostgresCommentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &PostgresCommentRepository{db: tx}
}

// CreateComment inserts a new comment
func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// GetCommentByID retrieves a comment by ID
func (r *PostgresCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListTopLevel retrieves a page of unmoderated top-level comments for a
// recipe, oldest first. Pagination counts only top-level comments.
func (r *PostgresCommentRepository) ListTopLevel(recipeID uint, offset, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("recipe_id = ? AND parent_id IS NULL AND is_moderated = ?", recipeID, false).
		Order("created_at ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CountTopLevel counts unmoderated top-level comments for a recipe
func (r *PostgresCommentRepository) CountTopLevel(recipeID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).
		Where("recipe_id = ? AND parent_id IS NULL AND is_moderated = ?", recipeID, false).
		Count(&count).Error
	return count, err
}

// ListReplies retrieves every unmoderated reply on a recipe, oldest first.
// The service builds the tree with a parent-id index, so fetch order does
// not have to put parents before children.
func (r *PostgresCommentRepository) ListReplies(recipeID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("recipe_id = ? AND parent_id IS NOT NULL AND is_moderated = ?", recipeID, false).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateComment updates an existing comment
func (r *PostgresCommentRepository) UpdateComment(comment *models.Comment) error {
	return r.db.Save(comment).Error
}

// DeleteComment hard-deletes a comment by ID
func (r *PostgresCommentRepository) DeleteComment(id uint) error {
	return r.db.Delete(&models.Comment{}, id).Error
}

// SetModeration toggles the moderation flag without touching content
func (r *PostgresCommentRepository) SetModeration(id uint, moderated bool, adminID uint) error {
	updates := map[string]interface{}{
		"is_moderated": moderated,
		"moderated_by": adminID,
		"moderated_at": gorm.Expr("CURRENT_TIMESTAMP"),
	}
	result := r.db.Model(&models.Comment{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
