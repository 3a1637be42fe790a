package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mrskaggs/forkful/backend/internal/apperrors"
	"github.com/mrskaggs/forkful/backend/internal/identity"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 8192
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// envelope is the wire frame in both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client is one authenticated socket connection. Authorization for every
// event is derived from the identity resolved at handshake time.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	identity identity.Identity
	send     chan []byte
	joined   map[uint]bool
}

// ServeWS upgrades the request and runs the connection's pumps. The caller
// must have resolved the identity already; unauthenticated requests never
// reach this point.
func ServeWS(hub *Hub, ident identity.Identity, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:      hub,
		conn:     conn,
		identity: ident,
		send:     make(chan []byte, sendBufferSize),
		joined:   make(map[uint]bool),
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// enqueue queues an event for delivery. A client that cannot keep up has
// its connection dropped rather than blocking the room.
func (c *Client) enqueue(event Event) {
	frame, err := json.Marshal(envelope{Event: event.Name, Data: event.Payload})
	if err != nil {
		return
	}
	select {
	case c.send <- frame:
	default:
		c.conn.Close()
	}
}

func (c *Client) sendError(appErr *apperrors.Error) {
	payload, err := json.Marshal(ErrorPayload{Code: appErr.Code, Message: appErr.Message})
	if err != nil {
		return
	}
	frame, err := json.Marshal(envelope{Event: EventError, Data: payload})
	if err != nil {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.conn.Close()
		close(c.send)
	}()
	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("unexpected close", zap.Uint("userID", c.identity.UserID), zap.Error(err))
			}
			return
		}
		c.dispatch(frame)
	}
}

// dispatch routes one inbound frame. Failures surface as a best-effort
// error event; the connection stays open.
func (c *Client) dispatch(frame []byte) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		c.sendError(apperrors.Validation("malformed_frame", "frames must be {event, data} JSON"))
		return
	}

	ctx := context.Background()
	var err error

	switch env.Event {
	case EventJoinRecipeChat:
		var payload JoinPayload
		if err = json.Unmarshal(env.Data, &payload); err == nil {
			err = c.hub.Join(ctx, c, payload.RecipeID)
		}
	case EventLeaveRecipeChat:
		var payload JoinPayload
		if err = json.Unmarshal(env.Data, &payload); err == nil {
			err = c.hub.Leave(c, payload.RecipeID)
		}
	case EventSendMessage:
		var payload SendMessagePayload
		if err = json.Unmarshal(env.Data, &payload); err == nil {
			err = c.hub.SendMessage(ctx, c, payload)
		}
	case EventEditMessage:
		var payload EditMessagePayload
		if err = json.Unmarshal(env.Data, &payload); err == nil {
			err = c.hub.EditMessage(ctx, c, payload)
		}
	case EventDeleteMessage:
		var payload DeleteMessagePayload
		if err = json.Unmarshal(env.Data, &payload); err == nil {
			err = c.hub.DeleteMessage(ctx, c, payload)
		}
	case EventTypingStart:
		var payload JoinPayload
		if err = json.Unmarshal(env.Data, &payload); err == nil {
			err = c.hub.SetTyping(c, payload.RecipeID, true)
		}
	case EventTypingStop:
		var payload JoinPayload
		if err = json.Unmarshal(env.Data, &payload); err == nil {
			err = c.hub.SetTyping(c, payload.RecipeID, false)
		}
	default:
		c.sendError(apperrors.Validation("unknown_event", "unknown event: "+env.Event))
		return
	}

	if err != nil {
		if appErr := apperrors.As(err); appErr != nil {
			c.sendError(appErr)
		} else {
			c.sendError(apperrors.Validation("malformed_payload", "could not parse event payload"))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
