package client

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/mrskaggs/forkful/backend/internal/chat"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"go.uber.org/zap"
)

const (
	reconnectInitialInterval = 1 * time.Second
	reconnectMaxAttempts     = 5
)

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Socket is the gateway client. It tracks the set of rooms the caller wants
// to be in; the server keeps no cross-reconnect membership, so every
// reconnect explicitly re-joins them. Reconnection backs off exponentially
// from one second and gives up silently after five attempts; the caller
// re-invokes Connect to resume.
type Socket struct {
	url    string
	token  string
	store  *Store
	logger *zap.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	rooms  map[uint]bool
	closed bool

	// OnError receives error events from the server. Optional.
	OnError func(code, message string)
}

// NewSocket creates a gateway client over the given store.
func NewSocket(url, token string, store *Store, logger *zap.Logger) *Socket {
	return &Socket{
		url:    url,
		token:  token,
		store:  store,
		logger: logger.Named("socket"),
		rooms:  make(map[uint]bool),
	}
}

// Connect dials the gateway and starts the read loop. Locally cached typing
// state is cleared: it was scoped to the previous connection.
func (s *Socket) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = false
	return s.connectLocked()
}

func (s *Socket) connectLocked() error {
	conn, _, err := websocket.DefaultDialer.Dial(s.url+"?token="+s.token, nil)
	if err != nil {
		return err
	}
	s.conn = conn
	s.store.ClearAllTyping()

	// Membership is held only in server memory; re-join every tracked room.
	for recipeID := range s.rooms {
		s.writeLocked(chat.EventJoinRecipeChat, chat.JoinPayload{RecipeID: recipeID})
	}

	go s.readLoop(conn)
	return nil
}

// Close shuts the connection down without reconnecting.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Socket) writeLocked(event string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(envelope{Event: event, Data: raw})
	if err != nil {
		return err
	}
	if s.conn == nil {
		return websocket.ErrCloseSent
	}
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

func (s *Socket) write(event string, payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(event, payload)
}

// JoinRoom tracks and joins a recipe chat room.
func (s *Socket) JoinRoom(recipeID uint) error {
	s.mu.Lock()
	s.rooms[recipeID] = true
	s.mu.Unlock()
	return s.write(chat.EventJoinRecipeChat, chat.JoinPayload{RecipeID: recipeID})
}

// LeaveRoom untracks and leaves a recipe chat room.
func (s *Socket) LeaveRoom(recipeID uint) error {
	s.mu.Lock()
	delete(s.rooms, recipeID)
	s.mu.Unlock()
	return s.write(chat.EventLeaveRecipeChat, chat.JoinPayload{RecipeID: recipeID})
}

// SendMessage sends a chat message. The local view is not touched: the
// message appears when the server broadcasts it back.
func (s *Socket) SendMessage(recipeID uint, content, messageType string) error {
	return s.write(chat.EventSendMessage, chat.SendMessagePayload{
		RecipeID:    recipeID,
		Content:     content,
		MessageType: messageType,
	})
}

// EditMessage requests an edit of one of the caller's messages.
func (s *Socket) EditMessage(messageID, newContent string) error {
	return s.write(chat.EventEditMessage, chat.EditMessagePayload{MessageID: messageID, NewContent: newContent})
}

// DeleteMessage requests deletion of one of the caller's messages.
func (s *Socket) DeleteMessage(messageID string) error {
	return s.write(chat.EventDeleteMessage, chat.DeleteMessagePayload{MessageID: messageID})
}

// TypingStart signals the caller started typing in a room.
func (s *Socket) TypingStart(recipeID uint) error {
	return s.write(chat.EventTypingStart, chat.JoinPayload{RecipeID: recipeID})
}

// TypingStop signals the caller stopped typing in a room.
func (s *Socket) TypingStop(recipeID uint) error {
	return s.write(chat.EventTypingStop, chat.JoinPayload{RecipeID: recipeID})
}

func (s *Socket) readLoop(conn *websocket.Conn) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			s.handleDisconnect(conn)
			return
		}

		var env envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			s.logger.Warn("dropping malformed frame", zap.Error(err))
			continue
		}
		s.handleEvent(env)
	}
}

func (s *Socket) handleEvent(env envelope) {
	switch env.Event {
	case chat.EventChatHistory:
		var payload chat.ChatHistoryPayload
		if err := json.Unmarshal(env.Data, &payload); err == nil {
			s.store.SetChatMessages(payload.RecipeID, payload.Messages)
		}
	case chat.EventNewMessage:
		var message models.ChatMessage
		if err := json.Unmarshal(env.Data, &message); err == nil {
			s.store.AppendChatMessage(message)
		}
	case chat.EventMessageEdited:
		var message models.ChatMessage
		if err := json.Unmarshal(env.Data, &message); err == nil {
			s.store.ApplyChatMessageEdited(message)
		}
	case chat.EventMessageDeleted:
		var payload chat.MessageDeletedPayload
		if err := json.Unmarshal(env.Data, &payload); err == nil {
			s.store.ApplyChatMessageDeleted(payload.RecipeID, payload.MessageID)
		}
	case chat.EventUserTyping:
		var payload chat.UserTypingPayload
		if err := json.Unmarshal(env.Data, &payload); err == nil {
			s.store.SetTyping(payload.RecipeID, payload.UserID, payload.DisplayName, payload.IsTyping)
		}
	case chat.EventUserLeft:
		var payload chat.PresencePayload
		if err := json.Unmarshal(env.Data, &payload); err == nil {
			s.store.SetTyping(payload.RecipeID, payload.UserID, payload.DisplayName, false)
		}
	case chat.EventError:
		var payload chat.ErrorPayload
		if err := json.Unmarshal(env.Data, &payload); err == nil && s.OnError != nil {
			s.OnError(payload.Code, payload.Message)
		}
	}
}

// handleDisconnect reconnects with bounded exponential backoff. After the
// attempt cap it stops silently; the caller resumes with Connect.
func (s *Socket) handleDisconnect(conn *websocket.Conn) {
	s.mu.Lock()
	if s.closed || s.conn != conn {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.mu.Unlock()

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(reconnectInitialInterval),
	), reconnectMaxAttempts-1)

	operation := func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return nil
		}
		return s.connectLocked()
	}

	if err := backoff.Retry(operation, policy); err != nil {
		s.logger.Warn("reconnect attempts exhausted", zap.Error(err))
	}
}
