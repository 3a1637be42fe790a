package chat

import "github.com/mrskaggs/forkful/backend/internal/models"

// Client -> server event names.
const (
	EventJoinRecipeChat  = "join-recipe-chat"
	EventLeaveRecipeChat = "leave-recipe-chat"
	EventSendMessage     = "send-message"
	EventEditMessage     = "edit-message"
	EventDeleteMessage   = "delete-message"
	EventTypingStart     = "typing-start"
	EventTypingStop      = "typing-stop"
)

// Server -> client event names.
const (
	EventChatHistory    = "chat-history"
	EventNewMessage     = "new-message"
	EventMessageEdited  = "message-edited"
	EventMessageDeleted = "message-deleted"
	EventUserTyping     = "user-typing"
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventError          = "error"
)

// JoinPayload carries join-recipe-chat, leave-recipe-chat, typing-start and
// typing-stop requests.
type JoinPayload struct {
	RecipeID uint `json:"recipe_id"`
}

// SendMessagePayload carries send-message requests.
type SendMessagePayload struct {
	RecipeID    uint   `json:"recipe_id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type,omitempty"`
}

// EditMessagePayload carries edit-message requests.
type EditMessagePayload struct {
	MessageID  string `json:"message_id"`
	NewContent string `json:"new_content"`
}

// DeleteMessagePayload carries delete-message requests.
type DeleteMessagePayload struct {
	MessageID string `json:"message_id"`
}

// ChatHistoryPayload carries the recent messages of a room, sent only to a
// freshly joined connection.
type ChatHistoryPayload struct {
	RecipeID uint                 `json:"recipe_id"`
	Messages []models.ChatMessage `json:"messages"`
}

// UserTypingPayload is rebroadcast to the room, excluding the sender.
type UserTypingPayload struct {
	RecipeID    uint   `json:"recipe_id"`
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	IsTyping    bool   `json:"is_typing"`
}

// PresencePayload carries user-joined and user-left notifications.
type PresencePayload struct {
	RecipeID    uint   `json:"recipe_id"`
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// MessageDeletedPayload carries message-deleted notifications.
type MessageDeletedPayload struct {
	MessageID string `json:"message_id"`
	RecipeID  uint   `json:"recipe_id"`
}

// ErrorPayload is emitted best-effort on the failing connection without
// terminating it.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
