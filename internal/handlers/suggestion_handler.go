package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mrskaggs/forkful/backend/internal/middleware"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"github.com/mrskaggs/forkful/backend/internal/services"
)

// SuggestionHandler handles HTTP requests related to recipe suggestions
type SuggestionHandler struct {
	suggestionService *services.SuggestionService
}

// NewSuggestionHandler creates a new SuggestionHandler
func NewSuggestionHandler(suggestionService *services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

// RegisterSuggestionRoutes registers suggestion-related routes
func (h *SuggestionHandler) RegisterSuggestionRoutes(g *echo.Group) {
	g.GET("/recipes/:recipe_id/suggestions", h.ListSuggestions)
	g.POST("/recipes/:recipe_id/suggestions", h.CreateSuggestion)
	g.PUT("/suggestions/:id/status", h.UpdateStatus)
}

// ListSuggestions retrieves a page of suggestions, newest first
func (h *SuggestionHandler) ListSuggestions(c echo.Context) error {
	recipeID, err := parseUintParam(c, "recipe_id")
	if err != nil {
		return err
	}
	page, limit := parsePagination(c)
	status := c.QueryParam("status")

	result, err := h.suggestionService.ListSuggestions(c.Request().Context(), recipeID, page, limit, status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateSuggestion files a new improvement proposal
func (h *SuggestionHandler) CreateSuggestion(c echo.Context) error {
	ident := middleware.CurrentIdentity(c)
	recipeID, err := parseUintParam(c, "recipe_id")
	if err != nil {
		return err
	}

	var req models.CreateSuggestionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	suggestion, err := h.suggestionService.CreateSuggestion(c.Request().Context(), recipeID, ident.UserID, req.Title, req.Description, req.SuggestionType)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, suggestion)
}

// UpdateStatus transitions a suggestion's status (admin)
func (h *SuggestionHandler) UpdateStatus(c echo.Context) error {
	ident := middleware.CurrentIdentity(c)
	suggestionID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateSuggestionStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	suggestion, err := h.suggestionService.UpdateStatus(c.Request().Context(), suggestionID, ident, req.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, suggestion)
}
