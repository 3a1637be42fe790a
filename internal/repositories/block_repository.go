package repositories

import (
	"github.com/mrskaggs/forkful/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlockRepository defines the interface for block data operations
type BlockRepository interface {
	WithTx(tx *gorm.DB) BlockRepository
	// InsertBlock inserts the pair unless it already exists. Returns false
	// without error on conflict.
	InsertBlock(block *models.Block) (bool, error)
	// DeleteBlock removes the pair. Returns false if no such pair exists.
	DeleteBlock(blockerID, blockedUserID uint) (bool, error)
	// IsBlocked reports whether any block row names the user as blocked,
	// independent of which admin created it.
	IsBlocked(userID uint) (bool, error)
	ListByBlocker(blockerID uint) ([]models.Block, error)
}

// PostgresBlockRepository implements BlockRepository for PostgreSQL
type PostgresBlockRepository struct {
	db *gorm.DB
}

// NewPostgresBlockRepository creates a new PostgresBlockRepository
func NewPostgresBlockRepository(db *gorm.DB) *PostgresBlockRepository {
	return &PostgresBlockRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *PostgresBlockRepository) WithTx(tx *gorm.DB) BlockRepository {
	return &PostgresBlockRepository{db: tx}
}

// InsertBlock inserts a block with insert-or-conflict semantics
func (r *PostgresBlockRepository) InsertBlock(block *models.Block) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_user_id"}},
		DoNothing: true,
	}).Create(block)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteBlock removes a block pair
func (r *PostgresBlockRepository) DeleteBlock(blockerID, blockedUserID uint) (bool, error) {
	result := r.db.Where("blocker_id = ? AND blocked_user_id = ?", blockerID, blockedUserID).
		Delete(&models.Block{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IsBlocked reports whether the user is globally blocked
func (r *PostgresBlockRepository) IsBlocked(userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Block{}).Where("blocked_user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByBlocker retrieves the blocks created by one admin
func (r *PostgresBlockRepository) ListByBlocker(blockerID uint) ([]models.Block, error) {
	var blocks []models.Block
	err := r.db.Where("blocker_id = ?", blockerID).Order("created_at DESC").Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	return blocks, nil
}
