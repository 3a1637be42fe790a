package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat message types
const (
	ChatMessageTypeMessage      = "message"
	ChatMessageTypeSystem       = "system"
	ChatMessageTypeNotification = "notification"
)

// ChatMessage represents a persisted chat message in a recipe room. Seq is
// the per-room ordering key, assigned under the room lock so delivery order
// always matches persistence order. Deletes are soft: the row is kept for
// audit and suppressed in rendering.
type ChatMessage struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	RecipeID    uint       `json:"recipe_id" gorm:"index:idx_chat_room_seq;not null"`
	UserID      uint       `json:"user_id" gorm:"index;not null"`
	Content     string     `json:"content" gorm:"type:text;not null"`
	MessageType string     `json:"message_type" gorm:"size:20;default:'message'"`
	Seq         int64      `json:"seq" gorm:"index:idx_chat_room_seq;not null"`
	Edited      bool       `json:"edited" gorm:"default:false"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
	IsDeleted   bool       `json:"is_deleted" gorm:"default:false"`
	CreatedAt   time.Time  `json:"created_at"`
}
