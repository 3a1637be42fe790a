package repositories

import (
	"github.com/mrskaggs/forkful/backend/internal/models"
	"gorm.io/gorm"
)

// SuggestionRepository defines the interface for suggestion data operations
type SuggestionRepository interface {
	WithTx(tx *gorm.DB) SuggestionRepository
	CreateSuggestion(suggestion *models.Suggestion) error
	GetSuggestionByID(id uint) (*models.Suggestion, error)
	ListByRecipe(recipeID uint, status string, offset, limit int) ([]models.Suggestion, error)
	CountByRecipe(recipeID uint, status string) (int64, error)
	UpdateSuggestion(suggestion *models.Suggestion) error
}

// PostgresSuggestionRepository implements SuggestionRepository for PostgreSQL
type PostgresSuggestionRepository struct {
	db *gorm.DB
}

// NewPostgresSuggestionRepository creates a new PostgresSuggestionRepository
func NewPostgresSuggestionRepository(db *gorm.DB) *PostgresSuggestionRepository {
	return &PostgresSuggestionRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *PostgresSuggestionRepository) WithTx(tx *gorm.DB) SuggestionRepository {
	return &PostgresSuggestionRepository{db: tx}
}

// CreateSuggestion inserts a new suggestion
func (r *PostgresSuggestionRepository) CreateSuggestion(suggestion *models.Suggestion) error {
	return r.db.Create(suggestion).Error
}

// GetSuggestionByID retrieves a suggestion by ID
func (r *PostgresSuggestionRepository) GetSuggestionByID(id uint) (*models.Suggestion, error) {
	var suggestion models.Suggestion
	if err := r.db.First(&suggestion, id).Error; err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (r *PostgresSuggestionRepository) scopeByRecipe(recipeID uint, status string) *gorm.DB {
	query := r.db.Model(&models.Suggestion{}).Where("recipe_id = ?", recipeID)
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	return query
}

// ListByRecipe retrieves a page of suggestions for a recipe, newest first,
// optionally filtered by status ("all" or empty disables the filter).
func (r *PostgresSuggestionRepository) ListByRecipe(recipeID uint, status string, offset, limit int) ([]models.Suggestion, error) {
	var suggestions []models.Suggestion
	err := r.scopeByRecipe(recipeID, status).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&suggestions).Error
	if err != nil {
		return nil, err
	}
	return suggestions, nil
}

// CountByRecipe counts suggestions for a recipe under the same filter
func (r *PostgresSuggestionRepository) CountByRecipe(recipeID uint, status string) (int64, error) {
	var count int64
	err := r.scopeByRecipe(recipeID, status).Count(&count).Error
	return count, err
}

// UpdateSuggestion updates an existing suggestion
func (r *PostgresSuggestionRepository) UpdateSuggestion(suggestion *models.Suggestion) error {
	return r.db.Save(suggestion).Error
}
