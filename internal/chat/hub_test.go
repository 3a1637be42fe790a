package chat_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mrskaggs/forkful/backend/internal/chat"
	"github.com/mrskaggs/forkful/backend/internal/identity"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"github.com/mrskaggs/forkful/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testGateway struct {
	hub    *chat.Hub
	db     *gorm.DB
	server *httptest.Server
}

// newTestGateway stands up a hub over an in-memory store and a plain HTTP
// server that resolves the identity from query parameters, the way the real
// handler resolves it from the token.
func newTestGateway(t *testing.T, recipeIDs ...uint) *testGateway {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ChatMessage{}, &models.Block{}))

	ids := make(map[uint]bool, len(recipeIDs))
	for _, id := range recipeIDs {
		ids[id] = true
	}

	hub := chat.NewHub(
		chat.NewLocalBus(),
		repositories.NewPostgresChatMessageRepository(db),
		repositories.NewPostgresBlockRepository(db),
		&repositories.StaticRecipeDirectory{IDs: ids},
		zap.NewNop(),
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := strconv.ParseUint(r.URL.Query().Get("user"), 10, 32)
		ident := identity.Identity{
			UserID:      uint(userID),
			DisplayName: r.URL.Query().Get("name"),
			Role:        identity.RoleUser,
		}
		_ = chat.ServeWS(hub, ident, w, r)
	}))
	t.Cleanup(server.Close)

	return &testGateway{hub: hub, db: db, server: server}
}

func (g *testGateway) dial(t *testing.T, userID uint, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(g.server.URL, "http") +
		"?user=" + strconv.FormatUint(uint64(userID), 10) + "&name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, payload interface{}) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	frame, err := json.Marshal(map[string]json.RawMessage{
		"event": json.RawMessage(strconv.Quote(event)),
		"data":  data,
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func expectEvent(t *testing.T, conn *websocket.Conn, name string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &env))
	require.Equal(t, name, env.Event, "unexpected event payload: %s", string(env.Data))
	return env.Data
}

func expectErrorEvent(t *testing.T, conn *websocket.Conn, code string) {
	t.Helper()
	data := expectEvent(t, conn, "error")
	var payload chat.ErrorPayload
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, code, payload.Code)
}

// join enters the room and consumes the history event every joiner receives.
func join(t *testing.T, conn *websocket.Conn, recipeID uint) chat.ChatHistoryPayload {
	t.Helper()
	send(t, conn, chat.EventJoinRecipeChat, chat.JoinPayload{RecipeID: recipeID})
	var history chat.ChatHistoryPayload
	require.NoError(t, json.Unmarshal(expectEvent(t, conn, chat.EventChatHistory), &history))
	assert.Equal(t, recipeID, history.RecipeID)
	return history
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, frame, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("expected no event, got %s", string(frame))
	}
}

func TestRoomBroadcastOrder(t *testing.T) {
	g := newTestGateway(t, 42)
	alice := g.dial(t, 1, "alice")
	bob := g.dial(t, 2, "bob")

	join(t, alice, 42)
	join(t, bob, 42)
	// Alice seeing bob's join proves bob is a member before she sends.
	expectEvent(t, alice, chat.EventUserJoined)

	for _, content := range []string{"one", "two", "three"} {
		send(t, alice, chat.EventSendMessage, chat.SendMessagePayload{RecipeID: 42, Content: content})
	}

	for _, conn := range []*websocket.Conn{alice, bob} {
		var lastSeq int64
		for _, want := range []string{"one", "two", "three"} {
			var msg models.ChatMessage
			require.NoError(t, json.Unmarshal(expectEvent(t, conn, chat.EventNewMessage), &msg))
			assert.Equal(t, want, msg.Content)
			assert.Greater(t, msg.Seq, lastSeq)
			lastSeq = msg.Seq
		}
	}
}

func TestJoinUnknownRecipe(t *testing.T) {
	g := newTestGateway(t, 42)
	alice := g.dial(t, 1, "alice")

	send(t, alice, chat.EventJoinRecipeChat, chat.JoinPayload{RecipeID: 99})
	expectErrorEvent(t, alice, "recipe_not_found")

	// The connection survives the error.
	join(t, alice, 42)
	send(t, alice, chat.EventSendMessage, chat.SendMessagePayload{RecipeID: 42, Content: "hi"})
	expectEvent(t, alice, chat.EventNewMessage)
}

func TestSendRequiresMembership(t *testing.T) {
	g := newTestGateway(t, 42)
	alice := g.dial(t, 1, "alice")

	send(t, alice, chat.EventSendMessage, chat.SendMessagePayload{RecipeID: 42, Content: "hi"})
	expectErrorEvent(t, alice, "not_in_room")
}

func TestSendContentValidation(t *testing.T) {
	g := newTestGateway(t, 42)
	alice := g.dial(t, 1, "alice")
	join(t, alice, 42)

	send(t, alice, chat.EventSendMessage, chat.SendMessagePayload{RecipeID: 42, Content: "   "})
	expectErrorEvent(t, alice, "invalid_content")

	send(t, alice, chat.EventSendMessage, chat.SendMessagePayload{RecipeID: 42, Content: "hi", MessageType: "shout"})
	expectErrorEvent(t, alice, "invalid_message_type")
}

func TestBlockedUserCannotSend(t *testing.T) {
	g := newTestGateway(t, 42)
	require.NoError(t, g.db.Create(&models.Block{BlockerID: 100, BlockedUserID: 1}).Error)

	alice := g.dial(t, 1, "alice")
	join(t, alice, 42)
	send(t, alice, chat.EventSendMessage, chat.SendMessagePayload{RecipeID: 42, Content: "hi"})
	expectErrorEvent(t, alice, "user_blocked")

	var count int64
	g.db.Model(&models.ChatMessage{}).Count(&count)
	assert.Zero(t, count)
}

func TestTypingExcludesSenderAndLeaveClears(t *testing.T) {
	g := newTestGateway(t, 42)
	alice := g.dial(t, 1, "alice")
	bob := g.dial(t, 2, "bob")

	join(t, alice, 42)
	join(t, bob, 42)
	expectEvent(t, alice, chat.EventUserJoined)

	send(t, alice, chat.EventTypingStart, chat.JoinPayload{RecipeID: 42})

	var typing chat.UserTypingPayload
	require.NoError(t, json.Unmarshal(expectEvent(t, bob, chat.EventUserTyping), &typing))
	assert.True(t, typing.IsTyping)
	assert.EqualValues(t, 1, typing.UserID)
	assert.Equal(t, "alice", typing.DisplayName)

	// The typer never receives their own indicator.
	expectSilence(t, alice)

	// Leaving while typing clears the flag for observers before the
	// departure notice.
	send(t, alice, chat.EventLeaveRecipeChat, chat.JoinPayload{RecipeID: 42})
	require.NoError(t, json.Unmarshal(expectEvent(t, bob, chat.EventUserTyping), &typing))
	assert.False(t, typing.IsTyping)
	expectEvent(t, bob, chat.EventUserLeft)
}

func TestEditAndDeleteOwnership(t *testing.T) {
	g := newTestGateway(t, 42)
	alice := g.dial(t, 1, "alice")
	bob := g.dial(t, 2, "bob")

	join(t, alice, 42)
	join(t, bob, 42)
	expectEvent(t, alice, chat.EventUserJoined)

	send(t, alice, chat.EventSendMessage, chat.SendMessagePayload{RecipeID: 42, Content: "draft"})
	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(expectEvent(t, alice, chat.EventNewMessage), &msg))
	expectEvent(t, bob, chat.EventNewMessage)

	// Only the author may edit.
	send(t, bob, chat.EventEditMessage, chat.EditMessagePayload{MessageID: msg.ID.String(), NewContent: "hijacked"})
	expectErrorEvent(t, bob, "not_owner")

	send(t, alice, chat.EventEditMessage, chat.EditMessagePayload{MessageID: msg.ID.String(), NewContent: "final"})
	var edited models.ChatMessage
	require.NoError(t, json.Unmarshal(expectEvent(t, bob, chat.EventMessageEdited), &edited))
	assert.Equal(t, "final", edited.Content)
	assert.True(t, edited.Edited)
	expectEvent(t, alice, chat.EventMessageEdited)

	// Only the author may delete, and deletion keeps the row.
	send(t, bob, chat.EventDeleteMessage, chat.DeleteMessagePayload{MessageID: msg.ID.String()})
	expectErrorEvent(t, bob, "not_owner")

	send(t, alice, chat.EventDeleteMessage, chat.DeleteMessagePayload{MessageID: msg.ID.String()})
	var deleted chat.MessageDeletedPayload
	require.NoError(t, json.Unmarshal(expectEvent(t, bob, chat.EventMessageDeleted), &deleted))
	assert.Equal(t, msg.ID.String(), deleted.MessageID)

	var stored models.ChatMessage
	require.NoError(t, g.db.First(&stored, "id = ?", msg.ID).Error)
	assert.True(t, stored.IsDeleted)
	assert.Equal(t, "final", stored.Content)
}

func TestRoomScoping(t *testing.T) {
	g := newTestGateway(t, 42, 43)
	alice := g.dial(t, 1, "alice")
	bob := g.dial(t, 2, "bob")

	join(t, alice, 42)
	join(t, bob, 43)

	send(t, alice, chat.EventSendMessage, chat.SendMessagePayload{RecipeID: 42, Content: "kept to room 42"})
	expectEvent(t, alice, chat.EventNewMessage)
	expectSilence(t, bob)
}

func TestJoinDeliversRecentHistory(t *testing.T) {
	g := newTestGateway(t, 42)
	messages := repositories.NewPostgresChatMessageRepository(g.db)
	require.NoError(t, messages.CreateChatMessage(&models.ChatMessage{
		ID: uuid.New(), RecipeID: 42, UserID: 9, Content: "earlier", MessageType: models.ChatMessageTypeMessage,
	}))
	removed := models.ChatMessage{
		ID: uuid.New(), RecipeID: 42, UserID: 9, Content: "gone", MessageType: models.ChatMessageTypeMessage,
	}
	require.NoError(t, messages.CreateChatMessage(&removed))
	require.NoError(t, messages.MarkDeleted(removed.ID))

	alice := g.dial(t, 1, "alice")
	history := join(t, alice, 42)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "earlier", history.Messages[0].Content)
	assert.EqualValues(t, 1, history.Messages[0].Seq)
}

func TestMalformedFrame(t *testing.T) {
	g := newTestGateway(t, 42)
	alice := g.dial(t, 1, "alice")

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	expectErrorEvent(t, alice, "malformed_frame")

	send(t, alice, "time-travel", chat.JoinPayload{RecipeID: 42})
	expectErrorEvent(t, alice, "unknown_event")
}
