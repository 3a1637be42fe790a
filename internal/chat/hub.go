package chat

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mrskaggs/forkful/backend/internal/apperrors"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"github.com/mrskaggs/forkful/backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxChatMessageLength = 2000
	chatHistoryLimit     = 50
)

// Hub is the room registry: one room per recipe, keyed by recipe ID,
// holding live connection handles. Membership lives only in memory and is
// rebuilt on every reconnect. Broadcasts flow through the Bus so a
// broker-backed bus can fan them out across instances.
type Hub struct {
	bus      Bus
	messages repositories.ChatMessageRepository
	blocks   repositories.BlockRepository
	recipes  repositories.RecipeDirectory
	logger   *zap.Logger

	mu    sync.Mutex
	rooms map[uint]*room
}

// room tracks the live members and ephemeral typing state for one recipe.
// sendMu serializes persist+publish so delivery order always matches
// persistence order within the room.
type room struct {
	sendMu  sync.Mutex
	members map[*Client]bool
	typing  map[uint]bool
	cancel  func()
}

// NewHub creates the hub over the given bus and stores.
func NewHub(bus Bus, messages repositories.ChatMessageRepository, blocks repositories.BlockRepository, recipes repositories.RecipeDirectory, logger *zap.Logger) *Hub {
	return &Hub{
		bus:      bus,
		messages: messages,
		blocks:   blocks,
		recipes:  recipes,
		logger:   logger.Named("chat"),
		rooms:    make(map[uint]*room),
	}
}

func roomKey(recipeID uint) string {
	return strconv.FormatUint(uint64(recipeID), 10)
}

// deliver fans a bus event out to the room's local members.
func (h *Hub) deliver(recipeID uint, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[recipeID]
	if !ok {
		return
	}
	for member := range r.members {
		if event.ExcludeUserID != 0 && member.identity.UserID == event.ExcludeUserID {
			continue
		}
		member.enqueue(event)
	}
}

func (h *Hub) publish(recipeID uint, name string, payload interface{}, excludeUserID uint) {
	event, err := NewEvent(name, payload)
	if err != nil {
		h.logger.Error("marshal event", zap.String("event", name), zap.Error(err))
		return
	}
	event.ExcludeUserID = excludeUserID
	if err := h.bus.Publish(roomKey(recipeID), event); err != nil {
		h.logger.Error("publish event", zap.String("event", name), zap.Error(err))
	}
}

// Join adds the connection to a recipe room, creating the room and its bus
// subscription on first member.
func (h *Hub) Join(ctx context.Context, c *Client, recipeID uint) error {
	exists, err := h.recipes.Exists(ctx, recipeID)
	if err != nil {
		return apperrors.Transient(err)
	}
	if !exists {
		return apperrors.NotFound("recipe_not_found", "recipe not found")
	}

	h.mu.Lock()
	r, ok := h.rooms[recipeID]
	if !ok {
		r = &room{members: make(map[*Client]bool), typing: make(map[uint]bool)}
		id := recipeID
		cancel, err := h.bus.Subscribe(roomKey(recipeID), func(event Event) {
			h.deliver(id, event)
		})
		if err != nil {
			h.mu.Unlock()
			return apperrors.Transient(err)
		}
		r.cancel = cancel
		h.rooms[recipeID] = r
	}
	r.members[c] = true
	c.joined[recipeID] = true
	h.mu.Unlock()

	// Recent history goes only to the joiner. Holding the send lock while
	// fetching keeps it a consistent prefix of the broadcast stream.
	r.sendMu.Lock()
	history, err := h.messages.ListRecentByRecipe(recipeID, chatHistoryLimit)
	if err == nil {
		event, marshalErr := NewEvent(EventChatHistory, ChatHistoryPayload{RecipeID: recipeID, Messages: history})
		if marshalErr == nil {
			c.enqueue(event)
		}
	} else {
		h.logger.Error("load chat history", zap.Uint("recipeID", recipeID), zap.Error(err))
	}
	r.sendMu.Unlock()

	h.publish(recipeID, EventUserJoined, PresencePayload{
		RecipeID:    recipeID,
		UserID:      c.identity.UserID,
		DisplayName: c.identity.DisplayName,
	}, c.identity.UserID)

	h.logger.Debug("client joined room", zap.Uint("recipeID", recipeID), zap.Uint("userID", c.identity.UserID))
	return nil
}

// Leave removes the connection from a room. A typing flag the leaver left
// behind is cleared here so no observer retains stale presence.
func (h *Hub) Leave(c *Client, recipeID uint) error {
	h.mu.Lock()
	r, ok := h.rooms[recipeID]
	if !ok || !r.members[c] {
		h.mu.Unlock()
		return apperrors.NotFound("not_in_room", "not a member of this room")
	}
	delete(r.members, c)
	delete(c.joined, recipeID)
	wasTyping := r.typing[c.identity.UserID]
	delete(r.typing, c.identity.UserID)
	if len(r.members) == 0 {
		r.cancel()
		delete(h.rooms, recipeID)
	}
	h.mu.Unlock()

	if wasTyping {
		h.publish(recipeID, EventUserTyping, UserTypingPayload{
			RecipeID:    recipeID,
			UserID:      c.identity.UserID,
			DisplayName: c.identity.DisplayName,
			IsTyping:    false,
		}, c.identity.UserID)
	}
	h.publish(recipeID, EventUserLeft, PresencePayload{
		RecipeID:    recipeID,
		UserID:      c.identity.UserID,
		DisplayName: c.identity.DisplayName,
	}, c.identity.UserID)
	return nil
}

// Disconnect tears down every room membership held by the connection.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	joined := make([]uint, 0, len(c.joined))
	for recipeID := range c.joined {
		joined = append(joined, recipeID)
	}
	h.mu.Unlock()

	for _, recipeID := range joined {
		_ = h.Leave(c, recipeID)
	}
}

func (h *Hub) isMember(c *Client, recipeID uint) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[recipeID]
	return ok && r.members[c]
}

// SendMessage persists the message and broadcasts it to every member of
// the room, sender included, so all viewers share one ordering source.
func (h *Hub) SendMessage(ctx context.Context, c *Client, payload SendMessagePayload) error {
	if !h.isMember(c, payload.RecipeID) {
		return apperrors.Permission("not_in_room", "join the room before sending")
	}

	content := strings.TrimSpace(payload.Content)
	if len(content) == 0 || len(content) > maxChatMessageLength {
		return apperrors.Validation("invalid_content", "content must be 1-2000 characters")
	}
	messageType := payload.MessageType
	if messageType == "" {
		messageType = models.ChatMessageTypeMessage
	}
	switch messageType {
	case models.ChatMessageTypeMessage, models.ChatMessageTypeSystem, models.ChatMessageTypeNotification:
	default:
		return apperrors.Validation("invalid_message_type", "unknown message type")
	}

	blocked, err := h.blocks.IsBlocked(c.identity.UserID)
	if err != nil {
		return apperrors.Transient(err)
	}
	if blocked {
		return apperrors.Permission("user_blocked", "you are blocked from chatting")
	}

	h.mu.Lock()
	r, ok := h.rooms[payload.RecipeID]
	h.mu.Unlock()
	if !ok {
		return apperrors.Permission("not_in_room", "join the room before sending")
	}

	message := &models.ChatMessage{
		ID:          uuid.New(),
		RecipeID:    payload.RecipeID,
		UserID:      c.identity.UserID,
		Content:     content,
		MessageType: messageType,
	}

	// Persist and publish under the room lock: the sequence number assigned
	// at persistence time is also the broadcast order.
	r.sendMu.Lock()
	defer r.sendMu.Unlock()
	if err := h.messages.CreateChatMessage(message); err != nil {
		return apperrors.Transient(err)
	}
	h.publish(payload.RecipeID, EventNewMessage, message, 0)
	return nil
}

// EditMessage updates a message's content. Authorization comes from the
// connection's resolved identity, never from a client-supplied field.
func (h *Hub) EditMessage(ctx context.Context, c *Client, payload EditMessagePayload) error {
	messageID, err := uuid.Parse(payload.MessageID)
	if err != nil {
		return apperrors.Validation("invalid_message_id", "malformed message id")
	}
	content := strings.TrimSpace(payload.NewContent)
	if len(content) == 0 || len(content) > maxChatMessageLength {
		return apperrors.Validation("invalid_content", "content must be 1-2000 characters")
	}

	message, err := h.messages.GetChatMessageByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("message_not_found", "message not found")
		}
		return apperrors.Transient(err)
	}
	if message.UserID != c.identity.UserID {
		return apperrors.Permission("not_owner", "you can only edit your own messages")
	}
	if message.IsDeleted {
		return apperrors.NotFound("message_not_found", "message not found")
	}

	now := time.Now()
	message.Content = content
	message.Edited = true
	message.EditedAt = &now
	if err := h.messages.UpdateChatMessage(message); err != nil {
		return apperrors.Transient(err)
	}

	h.publish(message.RecipeID, EventMessageEdited, message, 0)
	return nil
}

// DeleteMessage soft-deletes: content stays for audit, rendering suppresses it.
func (h *Hub) DeleteMessage(ctx context.Context, c *Client, payload DeleteMessagePayload) error {
	messageID, err := uuid.Parse(payload.MessageID)
	if err != nil {
		return apperrors.Validation("invalid_message_id", "malformed message id")
	}

	message, err := h.messages.GetChatMessageByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("message_not_found", "message not found")
		}
		return apperrors.Transient(err)
	}
	if message.UserID != c.identity.UserID {
		return apperrors.Permission("not_owner", "you can only delete your own messages")
	}

	if err := h.messages.MarkDeleted(messageID); err != nil {
		return apperrors.Transient(err)
	}

	h.publish(message.RecipeID, EventMessageDeleted, MessageDeletedPayload{
		MessageID: messageID.String(),
		RecipeID:  message.RecipeID,
	}, 0)
	return nil
}

// SetTyping records the ephemeral typing flag and rebroadcasts it to the
// room, excluding the sender. The gateway enforces no timeout on stale
// flags; user-left handling and client timeouts clear leftovers.
func (h *Hub) SetTyping(c *Client, recipeID uint, isTyping bool) error {
	h.mu.Lock()
	r, ok := h.rooms[recipeID]
	if !ok || !r.members[c] {
		h.mu.Unlock()
		return apperrors.Permission("not_in_room", "join the room first")
	}
	if isTyping {
		r.typing[c.identity.UserID] = true
	} else {
		delete(r.typing, c.identity.UserID)
	}
	h.mu.Unlock()

	h.publish(recipeID, EventUserTyping, UserTypingPayload{
		RecipeID:    recipeID,
		UserID:      c.identity.UserID,
		DisplayName: c.identity.DisplayName,
		IsTyping:    isTyping,
	}, c.identity.UserID)
	return nil
}
