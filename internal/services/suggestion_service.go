package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mrskaggs/forkful/backend/internal/apperrors"
	"github.com/mrskaggs/forkful/backend/internal/authz"
	"github.com/mrskaggs/forkful/backend/internal/identity"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"github.com/mrskaggs/forkful/backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxSuggestionLength = 2000

// SuggestionPage is one page of suggestions.
type SuggestionPage struct {
	Suggestions []models.Suggestion `json:"suggestions"`
	Total       int64               `json:"total"`
	Page        int                 `json:"page"`
	Limit       int                 `json:"limit"`
}

// SuggestionService mirrors the comment creation contract without threading
// or owner edits.
type SuggestionService struct {
	db          *gorm.DB
	suggestions repositories.SuggestionRepository
	blocks      repositories.BlockRepository
	recipes     repositories.RecipeDirectory
	policy      *authz.Policy
	logger      *zap.Logger
}

// NewSuggestionService creates a new SuggestionService
func NewSuggestionService(db *gorm.DB, suggestions repositories.SuggestionRepository, blocks repositories.BlockRepository, recipes repositories.RecipeDirectory, policy *authz.Policy, logger *zap.Logger) *SuggestionService {
	return &SuggestionService{
		db:          db,
		suggestions: suggestions,
		blocks:      blocks,
		recipes:     recipes,
		policy:      policy,
		logger:      logger.Named("suggestions"),
	}
}

// ListSuggestions returns suggestions newest-first, filtered by status.
// "all" or empty disables the filter.
func (s *SuggestionService) ListSuggestions(ctx context.Context, recipeID uint, page, limit int, status string) (*SuggestionPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	exists, err := s.recipes.Exists(ctx, recipeID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	if !exists {
		return nil, apperrors.NotFound("recipe_not_found", "recipe not found")
	}

	suggestions, err := s.suggestions.ListByRecipe(recipeID, status, (page-1)*limit, limit)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	total, err := s.suggestions.CountByRecipe(recipeID, status)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	return &SuggestionPage{Suggestions: suggestions, Total: total, Page: page, Limit: limit}, nil
}

// CreateSuggestion validates, enforces the block check and inserts. New
// suggestions always start pending.
func (s *SuggestionService) CreateSuggestion(ctx context.Context, recipeID, authorID uint, title, description, suggestionType string) (*models.Suggestion, error) {
	description = strings.TrimSpace(description)
	if len(description) == 0 || len(description) > maxSuggestionLength {
		return nil, apperrors.Validation("invalid_description", "description must be 1-2000 characters")
	}
	switch suggestionType {
	case "improvement", "variation", "correction":
	default:
		return nil, apperrors.Validation("invalid_type", "suggestion_type must be improvement, variation or correction")
	}

	exists, err := s.recipes.Exists(ctx, recipeID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	if !exists {
		return nil, apperrors.NotFound("recipe_not_found", "recipe not found")
	}

	blocked, err := s.blocks.IsBlocked(authorID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	if blocked {
		return nil, apperrors.Permission("user_blocked", "you are blocked from posting")
	}

	suggestion := &models.Suggestion{
		RecipeID:       recipeID,
		AuthorID:       authorID,
		Title:          strings.TrimSpace(title),
		Description:    description,
		SuggestionType: suggestionType,
		Status:         models.SuggestionStatusPending,
	}
	if err := s.suggestions.CreateSuggestion(suggestion); err != nil {
		return nil, apperrors.Transient(err)
	}

	s.logger.Info("suggestion created",
		zap.Uint("suggestionID", suggestion.ID),
		zap.Uint("recipeID", recipeID),
		zap.Uint("authorID", authorID))
	return suggestion, nil
}

// UpdateStatus transitions a suggestion's status. Admin extension point;
// accepting records who accepted and when.
func (s *SuggestionService) UpdateStatus(ctx context.Context, id uint, admin identity.Identity, status string) (*models.Suggestion, error) {
	if !s.policy.CanModerate(admin) {
		return nil, apperrors.Permission("admin_required", "admin role required")
	}

	suggestion, err := s.suggestions.GetSuggestionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("suggestion_not_found", "suggestion not found")
		}
		return nil, apperrors.Transient(err)
	}

	suggestion.Status = status
	if status == models.SuggestionStatusAccepted {
		now := time.Now()
		suggestion.AcceptedBy = &admin.UserID
		suggestion.AcceptedAt = &now
	}
	if err := s.suggestions.UpdateSuggestion(suggestion); err != nil {
		return nil, apperrors.Transient(err)
	}
	return suggestion, nil
}
