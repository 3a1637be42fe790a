package repositories

import (
	"github.com/google/uuid"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"gorm.io/gorm"
)

// ChatMessageRepository defines the interface for chat message data operations
type ChatMessageRepository interface {
	WithTx(tx *gorm.DB) ChatMessageRepository
	// CreateChatMessage assigns the next per-room sequence number and inserts
	// the message. The gateway serializes calls per room, so the max+1 read
	// never races within a room.
	CreateChatMessage(message *models.ChatMessage) error
	GetChatMessageByID(id uuid.UUID) (*models.ChatMessage, error)
	ListRecentByRecipe(recipeID uint, limit int) ([]models.ChatMessage, error)
	UpdateChatMessage(message *models.ChatMessage) error
	// MarkDeleted soft-deletes: the row is retained for audit.
	MarkDeleted(id uuid.UUID) error
}

// PostgresChatMessageRepository implements ChatMessageRepository for PostgreSQL
type PostgresChatMessageRepository struct {
	db *gorm.DB
}

// NewPostgresChatMessageRepository creates a new PostgresChatMessageRepository
func NewPostgresChatMessageRepository(db *gorm.DB) *PostgresChatMessageRepository {
	return &PostgresChatMessageRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *PostgresChatMessageRepository) WithTx(tx *gorm.DB) ChatMessageRepository {
	return &PostgresChatMessageRepository{db: tx}
}

// CreateChatMessage inserts a message with the next room sequence number
func (r *PostgresChatMessageRepository) CreateChatMessage(message *models.ChatMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxSeq int64
		err := tx.Model(&models.ChatMessage{}).
			Where("recipe_id = ?", message.RecipeID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error
		if err != nil {
			return err
		}
		message.Seq = maxSeq + 1
		return tx.Create(message).Error
	})
}

// GetChatMessageByID retrieves a message by ID
func (r *PostgresChatMessageRepository) GetChatMessageByID(id uuid.UUID) (*models.ChatMessage, error) {
	var message models.ChatMessage
	if err := r.db.First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// ListRecentByRecipe retrieves the most recent non-deleted messages for a
// room in sequence order.
func (r *PostgresChatMessageRepository) ListRecentByRecipe(recipeID uint, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.Where("recipe_id = ? AND is_deleted = ?", recipeID, false).
		Order("seq DESC").Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	// Reverse into ascending sequence order for rendering.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// UpdateChatMessage updates an existing message
func (r *PostgresChatMessageRepository) UpdateChatMessage(message *models.ChatMessage) error {
	return r.db.Save(message).Error
}

// MarkDeleted flags a message as deleted without removing the row
func (r *PostgresChatMessageRepository) MarkDeleted(id uuid.UUID) error {
	result := r.db.Model(&models.ChatMessage{}).Where("id = ?", id).Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
