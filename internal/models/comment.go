package models

import "time"

// Comment represents a threaded comment on a recipe (PostgreSQL)
type Comment struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	RecipeID    uint       `json:"recipe_id" gorm:"index;not null"`
	AuthorID    uint       `json:"author_id" gorm:"index;not null"`
	ParentID    *uint      `json:"parent_id,omitempty" gorm:"index"` // must reference a comment on the same recipe
	Content     string     `json:"content" gorm:"type:text;not null"`
	IsModerated bool       `json:"is_moderated" gorm:"default:false;index"`
	ModeratedBy *uint      `json:"moderated_by,omitempty"`
	ModeratedAt *time.Time `json:"moderated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CommentNode is a comment with its nested replies, as returned by listing.
type CommentNode struct {
	Comment
	ReplyCount int           `json:"reply_count"`
	Replies    []CommentNode `json:"replies"`
}

// CreateCommentRequest defines the request body for creating a comment
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=1000"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// UpdateCommentRequest defines the request body for editing a comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// ModerateCommentRequest defines the admin moderation body
type ModerateCommentRequest struct {
	Action string `json:"action" validate:"required,oneof=approve hide"`
}
