package client

import (
	"fmt"
	"sync"

	"github.com/mrskaggs/forkful/backend/internal/models"
)

// Store is the keyed client-side state container: per-recipe caches for
// comments, suggestions and chat, plus per-operation loading/error maps so
// a failure on one entity never blocks or corrupts unrelated operations.
//
// All mutations are confirmed-optimistic: Apply* methods are called only
// after the server acknowledges the write, so there is no rollback logic.
// Chat messages are appended only from server broadcasts; the sender never
// locally echoes a send, so the rendered history cannot diverge from the
// server's.
type Store struct {
	mu          sync.RWMutex
	comments    map[uint][]models.CommentNode
	suggestions map[uint][]models.Suggestion
	chat        map[uint][]models.ChatMessage
	typing      map[uint]map[uint]string // recipeID -> userID -> display name
	loading     map[string]bool
	errors      map[string]string
}

// NewStore creates an empty state container.
func NewStore() *Store {
	return &Store{
		comments:    make(map[uint][]models.CommentNode),
		suggestions: make(map[uint][]models.Suggestion),
		chat:        make(map[uint][]models.ChatMessage),
		typing:      make(map[uint]map[uint]string),
		loading:     make(map[string]bool),
		errors:      make(map[string]string),
	}
}

// OpKey builds a per-operation key, e.g. OpKey("edit_comment", 42).
func OpKey(operation string, id interface{}) string {
	return fmt.Sprintf("%s_%v", operation, id)
}

// --- Operation state ---

// Begin marks an operation in flight and clears its previous error.
func (s *Store) Begin(opKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading[opKey] = true
	delete(s.errors, opKey)
}

// Finish marks an operation complete.
func (s *Store) Finish(opKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.loading, opKey)
}

// Fail records an operation failure.
func (s *Store) Fail(opKey, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.loading, opKey)
	s.errors[opKey] = message
}

// IsLoading reports whether the operation is in flight.
func (s *Store) IsLoading(opKey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[opKey]
}

// OpError returns the operation's recorded error, if any.
func (s *Store) OpError(opKey string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errors[opKey]
}

// --- Comment cache ---

// SetComments replaces the cached comment page for a recipe.
func (s *Store) SetComments(recipeID uint, comments []models.CommentNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[recipeID] = comments
}

// Comments returns the cached comment page for a recipe.
func (s *Store) Comments(recipeID uint) []models.CommentNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.comments[recipeID]
}

// ApplyCommentCreated inserts a server-acknowledged comment into the cache:
// top-level comments append, replies attach under their parent.
func (s *Store) ApplyCommentCreated(comment models.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodes := s.comments[comment.RecipeID]
	node := models.CommentNode{Comment: comment, Replies: []models.CommentNode{}}
	if comment.ParentID == nil {
		s.comments[comment.RecipeID] = append(nodes, node)
		return
	}
	s.comments[comment.RecipeID] = mapNodes(nodes, func(n models.CommentNode) models.CommentNode {
		if n.ID == *comment.ParentID {
			n.Replies = append(n.Replies, node)
			n.ReplyCount = len(n.Replies)
		}
		return n
	})
}

// ApplyCommentUpdated replaces a comment's content after server acknowledgment.
func (s *Store) ApplyCommentUpdated(comment models.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[comment.RecipeID] = mapNodes(s.comments[comment.RecipeID], func(n models.CommentNode) models.CommentNode {
		if n.ID == comment.ID {
			n.Comment = comment
		}
		return n
	})
}

// ApplyCommentDeleted removes a comment (and its subtree) from the cache.
func (s *Store) ApplyCommentDeleted(recipeID, commentID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[recipeID] = dropNode(s.comments[recipeID], commentID)
}

// mapNodes applies a pure update function to every node in the tree.
func mapNodes(nodes []models.CommentNode, update func(models.CommentNode) models.CommentNode) []models.CommentNode {
	out := make([]models.CommentNode, len(nodes))
	for i, node := range nodes {
		node.Replies = mapNodes(node.Replies, update)
		out[i] = update(node)
	}
	return out
}

func dropNode(nodes []models.CommentNode, id uint) []models.CommentNode {
	out := make([]models.CommentNode, 0, len(nodes))
	for _, node := range nodes {
		if node.ID == id {
			continue
		}
		node.Replies = dropNode(node.Replies, id)
		node.ReplyCount = len(node.Replies)
		out = append(out, node)
	}
	return out
}

// --- Suggestion cache ---

// SetSuggestions replaces the cached suggestion page for a recipe.
func (s *Store) SetSuggestions(recipeID uint, suggestions []models.Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions[recipeID] = suggestions
}

// Suggestions returns the cached suggestion page for a recipe.
func (s *Store) Suggestions(recipeID uint) []models.Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suggestions[recipeID]
}

// ApplySuggestionCreated prepends a server-acknowledged suggestion
// (listings are newest-first).
func (s *Store) ApplySuggestionCreated(suggestion models.Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions[suggestion.RecipeID] = append([]models.Suggestion{suggestion}, s.suggestions[suggestion.RecipeID]...)
}

// --- Chat cache ---

// SetChatMessages replaces the room's view with server-provided history.
// Used on join and re-join so reconnects never render a gap.
func (s *Store) SetChatMessages(recipeID uint, messages []models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat[recipeID] = messages
}

// AppendChatMessage appends a broadcast message to the room's view.
func (s *Store) AppendChatMessage(message models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat[message.RecipeID] = append(s.chat[message.RecipeID], message)
}

// ApplyChatMessageEdited replaces the edited message in place.
func (s *Store) ApplyChatMessageEdited(message models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := s.chat[message.RecipeID]
	for i := range messages {
		if messages[i].ID == message.ID {
			messages[i] = message
		}
	}
}

// ApplyChatMessageDeleted marks the message deleted; rendering suppresses it.
func (s *Store) ApplyChatMessageDeleted(recipeID uint, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := s.chat[recipeID]
	for i := range messages {
		if messages[i].ID.String() == messageID {
			messages[i].IsDeleted = true
		}
	}
}

// ChatMessages returns the room's non-deleted messages in broadcast order.
func (s *Store) ChatMessages(recipeID uint) []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChatMessage, 0, len(s.chat[recipeID]))
	for _, message := range s.chat[recipeID] {
		if !message.IsDeleted {
			out = append(out, message)
		}
	}
	return out
}

// --- Typing presence ---

// SetTyping records or clears another user's typing flag.
func (s *Store) SetTyping(recipeID, userID uint, displayName string, isTyping bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if isTyping {
		if s.typing[recipeID] == nil {
			s.typing[recipeID] = make(map[uint]string)
		}
		s.typing[recipeID][userID] = displayName
		return
	}
	delete(s.typing[recipeID], userID)
	if len(s.typing[recipeID]) == 0 {
		delete(s.typing, recipeID)
	}
}

// TypingUsers returns the users currently typing in a room.
func (s *Store) TypingUsers(recipeID uint) map[uint]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uint]string, len(s.typing[recipeID]))
	for userID, name := range s.typing[recipeID] {
		out[userID] = name
	}
	return out
}

// ClearAllTyping drops every cached typing flag. Called on reconnect, since
// typing state is scoped to the lost connection.
func (s *Store) ClearAllTyping() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typing = make(map[uint]map[uint]string)
}
