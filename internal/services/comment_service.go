package services

import (
	"context"
	"errors"
	"strings"

	"github.com/mrskaggs/forkful/backend/internal/apperrors"
	"github.com/mrskaggs/forkful/backend/internal/authz"
	"github.com/mrskaggs/forkful/backend/internal/identity"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"github.com/mrskaggs/forkful/backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxCommentLength = 1000

// CommentPage is one page of top-level comments with their reply trees.
type CommentPage struct {
	Comments []models.CommentNode `json:"comments"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	Limit    int                  `json:"limit"`
}

// CommentService owns threaded comment semantics: parent integrity, block
// enforcement, owner edits and admin moderation.
type CommentService struct {
	db       *gorm.DB
	comments repositories.CommentRepository
	blocks   repositories.BlockRepository
	recipes  repositories.RecipeDirectory
	policy   *authz.Policy
	logger   *zap.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(db *gorm.DB, comments repositories.CommentRepository, blocks repositories.BlockRepository, recipes repositories.RecipeDirectory, policy *authz.Policy, logger *zap.Logger) *CommentService {
	return &CommentService{
		db:       db,
		comments: comments,
		blocks:   blocks,
		recipes:  recipes,
		policy:   policy,
		logger:   logger.Named("comments"),
	}
}

// ListComments returns unmoderated top-level comments oldest-first, each
// with its reply count and nested replies. Pagination counts only top-level
// comments. The tree is built from a parent-id index in two passes, so
// correctness does not depend on parents arriving before children.
func (s *CommentService) ListComments(ctx context.Context, recipeID uint, page, limit int) (*CommentPage, error) {
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

	topLevel, err := s.comments.ListTopLevel(recipeID, (page-1)*limit, limit)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	total, err := s.comments.CountTopLevel(recipeID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	replies, err := s.comments.ListReplies(recipeID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	// Pass one: index replies by parent. Pass two: attach recursively.
	byParent := make(map[uint][]models.Comment)
	for _, reply := range replies {
		byParent[*reply.ParentID] = append(byParent[*reply.ParentID], reply)
	}

	nodes := make([]models.CommentNode, len(topLevel))
	for i, comment := range topLevel {
		nodes[i] = buildCommentNode(comment, byParent)
	}

	return &CommentPage{Comments: nodes, Total: total, Page: page, Limit: limit}, nil
}

func buildCommentNode(comment models.Comment, byParent map[uint][]models.Comment) models.CommentNode {
	children := byParent[comment.ID]
	node := models.CommentNode{
		Comment:    comment,
		ReplyCount: len(children),
		Replies:    make([]models.CommentNode, len(children)),
	}
	for i, child := range children {
		node.Replies[i] = buildCommentNode(child, byParent)
	}
	return node
}

// CreateComment validates, enforces the block and parent invariants, and
// inserts. The parent check and insert share one transaction so a vanished
// parent can never leave an orphaned reply.
func (s *CommentService) CreateComment(ctx context.Context, recipeID, authorID uint, content string, parentID *uint) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if len(content) == 0 || len(content) > maxCommentLength {
		return nil, apperrors.Validation("invalid_content", "content must be 1-1000 characters")
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

	comment := &models.Comment{
		RecipeID: recipeID,
		AuthorID: authorID,
		ParentID: parentID,
		Content:  content,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txComments := s.comments.WithTx(tx)
		if parentID != nil {
			parent, err := txComments.GetCommentByID(*parentID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("parent_not_found", "parent comment not found")
				}
				return apperrors.Transient(err)
			}
			if parent.RecipeID != recipeID {
				return apperrors.NotFound("parent_not_found", "parent comment not found on this recipe")
			}
			if parent.IsModerated {
				return apperrors.NotFound("parent_not_found", "parent comment is not available")
			}
		}
		if err := txComments.CreateComment(comment); err != nil {
			return apperrors.Transient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment created",
		zap.Uint("commentID", comment.ID),
		zap.Uint("recipeID", recipeID),
		zap.Uint("authorID", authorID))
	return comment, nil
}

// UpdateComment edits a comment. Owner-only, and only while unmoderated.
func (s *CommentService) UpdateComment(ctx context.Context, id, actorID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if len(content) == 0 || len(content) > maxCommentLength {
		return nil, apperrors.Validation("invalid_content", "content must be 1-1000 characters")
	}

	comment, err := s.comments.GetCommentByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("comment_not_found", "comment not found")
		}
		return nil, apperrors.Transient(err)
	}
	if comment.AuthorID != actorID {
		return nil, apperrors.Permission("not_owner", "you can only edit your own comments")
	}
	if comment.IsModerated {
		return nil, apperrors.Permission("comment_moderated", "moderated comments cannot be edited")
	}

	comment.Content = content
	if err := s.comments.UpdateComment(comment); err != nil {
		return nil, apperrors.Transient(err)
	}
	return comment, nil
}

// DeleteComment hard-deletes. Owner or admin, regardless of moderation flag.
func (s *CommentService) DeleteComment(ctx context.Context, id uint, actor identity.Identity) error {
	comment, err := s.comments.GetCommentByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("comment_not_found", "comment not found")
		}
		return apperrors.Transient(err)
	}
	if !s.policy.CanDeleteComment(actor, comment.AuthorID) {
		return apperrors.Permission("not_owner", "you can only delete your own comments")
	}
	if err := s.comments.DeleteComment(id); err != nil {
		return apperrors.Transient(err)
	}
	s.logger.Info("comment deleted", zap.Uint("commentID", id), zap.Uint("actorID", actor.UserID))
	return nil
}

// ModerateComment toggles the moderation flag. Hide removes the comment
// from default views; approve restores it. Neither deletes the row.
func (s *CommentService) ModerateComment(ctx context.Context, id uint, admin identity.Identity, action string) error {
	if !s.policy.CanModerate(admin) {
		return apperrors.Permission("admin_required", "admin role required")
	}
	if action != "approve" && action != "hide" {
		return apperrors.Validation("invalid_action", "action must be approve or hide")
	}

	err := s.comments.SetModeration(id, action == "hide", admin.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("comment_not_found", "comment not found")
		}
		return apperrors.Transient(err)
	}
	s.logger.Info("comment moderated",
		zap.Uint("commentID", id),
		zap.Uint("adminID", admin.UserID),
		zap.String("action", action))
	return nil
}
