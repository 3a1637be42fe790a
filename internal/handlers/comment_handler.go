package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mrskaggs/forkful/backend/internal/middleware"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"github.com/mrskaggs/forkful/backend/internal/services"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/recipes/:recipe_id/comments", h.ListComments)
	g.POST("/recipes/:recipe_id/comments", h.CreateComment)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.PUT("/moderate/comments/:id", h.ModerateComment)
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(value), nil
}

func parsePagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}

// ListComments retrieves a page of top-level comments with nested replies
func (h *CommentHandler) ListComments(c echo.Context) error {
	recipeID, err := parseUintParam(c, "recipe_id")
	if err != nil {
		return err
	}
	page, limit := parsePagination(c)

	result, err := h.commentService.ListComments(c.Request().Context(), recipeID, page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateComment creates a new comment or reply on a recipe
func (h *CommentHandler) CreateComment(c echo.Context) error {
	ident := middleware.CurrentIdentity(c)
	recipeID, err := parseUintParam(c, "recipe_id")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.commentService.CreateComment(c.Request().Context(), recipeID, ident.UserID, req.Content, req.ParentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// UpdateComment edits an existing comment (owner-only, unmoderated-only)
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	ident := middleware.CurrentIdentity(c)
	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.commentService.UpdateComment(c.Request().Context(), commentID, ident.UserID, req.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment hard-deletes a comment (owner or admin)
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	ident := middleware.CurrentIdentity(c)
	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.commentService.DeleteComment(c.Request().Context(), commentID, ident); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ModerateComment toggles the moderation flag (admin)
func (h *CommentHandler) ModerateComment(c echo.Context) error {
	ident := middleware.CurrentIdentity(c)
	commentID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req models.ModerateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.commentService.ModerateComment(c.Request().Context(), commentID, ident, req.Action); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
