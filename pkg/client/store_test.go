package client_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"github.com/mrskaggs/forkful/backend/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationStateIsKeyed(t *testing.T) {
	store := client.NewStore()
	editKey := client.OpKey("edit_comment", 42)
	deleteKey := client.OpKey("delete_comment", 7)

	store.Begin(editKey)
	store.Begin(deleteKey)
	assert.True(t, store.IsLoading(editKey))
	assert.True(t, store.IsLoading(deleteKey))

	// One operation failing leaves the other untouched.
	store.Fail(editKey, "content too long")
	assert.False(t, store.IsLoading(editKey))
	assert.Equal(t, "content too long", store.OpError(editKey))
	assert.True(t, store.IsLoading(deleteKey))
	assert.Empty(t, store.OpError(deleteKey))

	store.Finish(deleteKey)
	assert.False(t, store.IsLoading(deleteKey))

	// Retrying clears the stale error.
	store.Begin(editKey)
	assert.Empty(t, store.OpError(editKey))
}

func parentOf(id uint) *uint { return &id }

func TestCommentCacheTree(t *testing.T) {
	store := client.NewStore()
	store.SetComments(42, []models.CommentNode{
		{Comment: models.Comment{ID: 1, RecipeID: 42, Content: "root"}},
	})

	// Top-level comments append; replies attach under their parent.
	store.ApplyCommentCreated(models.Comment{ID: 2, RecipeID: 42, Content: "second root"})
	store.ApplyCommentCreated(models.Comment{ID: 3, RecipeID: 42, ParentID: parentOf(1), Content: "reply"})
	store.ApplyCommentCreated(models.Comment{ID: 4, RecipeID: 42, ParentID: parentOf(3), Content: "nested reply"})

	comments := store.Comments(42)
	require.Len(t, comments, 2)
	require.Len(t, comments[0].Replies, 1)
	assert.Equal(t, 1, comments[0].ReplyCount)
	require.Len(t, comments[0].Replies[0].Replies, 1)
	assert.Equal(t, "nested reply", comments[0].Replies[0].Replies[0].Content)

	// Edits replace in place at any depth.
	store.ApplyCommentUpdated(models.Comment{ID: 4, RecipeID: 42, ParentID: parentOf(3), Content: "fixed"})
	assert.Equal(t, "fixed", store.Comments(42)[0].Replies[0].Replies[0].Content)

	// Deleting a reply drops it and recounts; deleting a root drops the subtree.
	store.ApplyCommentDeleted(42, 4)
	comments = store.Comments(42)
	assert.Empty(t, comments[0].Replies[0].Replies)

	store.ApplyCommentDeleted(42, 1)
	comments = store.Comments(42)
	require.Len(t, comments, 1)
	assert.EqualValues(t, 2, comments[0].ID)
}

func TestCommentCacheIsPerRecipe(t *testing.T) {
	store := client.NewStore()
	store.ApplyCommentCreated(models.Comment{ID: 1, RecipeID: 42, Content: "on 42"})
	store.ApplyCommentCreated(models.Comment{ID: 2, RecipeID: 43, Content: "on 43"})

	require.Len(t, store.Comments(42), 1)
	require.Len(t, store.Comments(43), 1)
	assert.Equal(t, "on 43", store.Comments(43)[0].Content)
}

func TestSuggestionCachePrepends(t *testing.T) {
	store := client.NewStore()
	store.SetSuggestions(42, []models.Suggestion{{ID: 1, RecipeID: 42, Title: "older"}})

	store.ApplySuggestionCreated(models.Suggestion{ID: 2, RecipeID: 42, Title: "newer"})

	suggestions := store.Suggestions(42)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "newer", suggestions[0].Title)
	assert.Equal(t, "older", suggestions[1].Title)
}

func TestChatCacheLifecycle(t *testing.T) {
	store := client.NewStore()
	first := models.ChatMessage{ID: uuid.New(), RecipeID: 42, Content: "one", Seq: 1}
	second := models.ChatMessage{ID: uuid.New(), RecipeID: 42, Content: "two", Seq: 2}
	store.AppendChatMessage(first)
	store.AppendChatMessage(second)

	messages := store.ChatMessages(42)
	require.Len(t, messages, 2)
	assert.Equal(t, "one", messages[0].Content)

	edited := second
	edited.Content = "two, edited"
	edited.Edited = true
	store.ApplyChatMessageEdited(edited)
	messages = store.ChatMessages(42)
	assert.Equal(t, "two, edited", messages[1].Content)

	// Deleted messages vanish from the rendered view but order is kept.
	store.ApplyChatMessageDeleted(42, first.ID.String())
	messages = store.ChatMessages(42)
	require.Len(t, messages, 1)
	assert.Equal(t, "two, edited", messages[0].Content)

	// Server history replaces the room view wholesale.
	store.SetChatMessages(42, []models.ChatMessage{first})
	messages = store.ChatMessages(42)
	require.Len(t, messages, 1)
	assert.Equal(t, "one", messages[0].Content)
}

func TestTypingPresence(t *testing.T) {
	store := client.NewStore()
	store.SetTyping(42, 1, "alice", true)
	store.SetTyping(42, 2, "bob", true)
	store.SetTyping(43, 3, "carol", true)

	assert.Equal(t, map[uint]string{1: "alice", 2: "bob"}, store.TypingUsers(42))

	store.SetTyping(42, 1, "alice", false)
	assert.Equal(t, map[uint]string{2: "bob"}, store.TypingUsers(42))

	// Reconnects wipe presence everywhere; it belongs to the dead connection.
	store.ClearAllTyping()
	assert.Empty(t, store.TypingUsers(42))
	assert.Empty(t, store.TypingUsers(43))
}
