package repositories

import (
	"context"

	"github.com/mrskaggs/forkful/backend/internal/models"
	"gorm.io/gorm"
)

// RecipeDirectory confirms that a recipe exists. The recipe platform proper
// owns the full documents; this service only needs the existence check.
type RecipeDirectory interface {
	Exists(ctx context.Context, recipeID uint) (bool, error)
}

// PostgresRecipeDirectory implements RecipeDirectory against the recipes table
type PostgresRecipeDirectory struct {
	db *gorm.DB
}

// NewPostgresRecipeDirectory creates a new PostgresRecipeDirectory
func NewPostgresRecipeDirectory(db *gorm.DB) *PostgresRecipeDirectory {
	return &PostgresRecipeDirectory{db: db}
}

// Exists reports whether the recipe row is present
func (d *PostgresRecipeDirectory) Exists(ctx context.Context, recipeID uint) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// StaticRecipeDirectory serves a fixed set of recipe IDs. Used in tests.
type StaticRecipeDirectory struct {
	IDs map[uint]bool
}

func (d *StaticRecipeDirectory) Exists(_ context.Context, recipeID uint) (bool, error) {
	return d.IDs[recipeID], nil
}
