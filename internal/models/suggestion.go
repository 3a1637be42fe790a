package models

import "time"

// Suggestion statuses
const (
	SuggestionStatusPending     = "pending"
	SuggestionStatusAccepted    = "accepted"
	SuggestionStatusRejected    = "rejected"
	SuggestionStatusImplemented = "implemented"
)

// Suggestion represents a recipe-improvement proposal (PostgreSQL)
type Suggestion struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	RecipeID       uint       `json:"recipe_id" gorm:"index;not null"`
	AuthorID       uint       `json:"author_id" gorm:"index;not null"`
	Title          string     `json:"title,omitempty" gorm:"size:200"`
	Description    string     `json:"description" gorm:"type:text;not null"`
	SuggestionType string     `json:"suggestion_type" gorm:"size:20;not null"` // improvement, variation, correction
	Status         string     `json:"status" gorm:"size:20;default:'pending';index"`
	AcceptedBy     *uint      `json:"accepted_by,omitempty"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateSuggestionRequest defines the request body for creating a suggestion
type CreateSuggestionRequest struct {
	Title          string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description    string `json:"description" validate:"required,min=1,max=2000"`
	SuggestionType string `json:"suggestion_type" validate:"required,oneof=improvement variation correction"`
}

// UpdateSuggestionStatusRequest defines the admin status transition body
type UpdateSuggestionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending accepted rejected implemented"`
}
