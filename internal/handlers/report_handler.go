package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mrskaggs/forkful/backend/internal/middleware"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"github.com/mrskaggs/forkful/backend/internal/services"
)

// ReportHandler handles abuse reports and admin blocking
type ReportHandler struct {
	moderationService *services.ModerationService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(moderationService *services.ModerationService) *ReportHandler {
	return &ReportHandler{moderationService: moderationService}
}

// RegisterReportRoutes registers report and block routes
func (h *ReportHandler) RegisterReportRoutes(g *echo.Group) {
	g.POST("/reports", h.SubmitReport)
	g.GET("/reports", h.ListReports)
	g.PUT("/reports/:id", h.ReviewReport)
	g.POST("/blocks", h.BlockUser)
	g.DELETE("/blocks/:user_id", h.UnblockUser)
	g.GET("/blocks", h.ListBlocks)
}

// SubmitReport files a report against content or a user
func (h *ReportHandler) SubmitReport(c echo.Context) error {
	ident := middleware.CurrentIdentity(c)

	var req models.CreateReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	report, err := h.moderationService.SubmitReport(c.Request().Context(), ident.UserID, req.ContentType, req.ContentID, req.Reason, req.Description)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, report)
}

// ListReports retrieves a page of reports (admin)
func (h *ReportHandler) ListReports(c echo.Context) error {
	ident := middleware.CurrentIdentity(c)
	page, limit := parsePagination(c)
	status := c.QueryParam("status")

	result, err := h.moderationService.ListReports(c.Request().Context(), ident, status, page, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// ReviewReport resolves a pending report (admin)
func (h *ReportHandler) ReviewReport(c echo.Context) error {
	ident := middleware.CurrentIdentity(c)

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid report ID")
	}

	var req models.ReviewReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	report, err := h.moderationService.ReviewReport(c.Request().Context(), reportID, ident, req.Action, req.ActionTaken)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

// BlockUser blocks a user from posting (admin)
func (h *ReportHandler) BlockUser(c echo.Context) error {
	ident := middleware.CurrentIdentity(c)

	var req models.CreateBlockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	block, err := h.moderationService.BlockUser(c.Request().Context(), ident, req.BlockedUserID, req.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, block)
}

// UnblockUser removes a block created by the calling admin
func (h *ReportHandler) UnblockUser(c echo.Context) error {
	ident := middleware.CurrentIdentity(c)
	blockedUserID, err := parseUintParam(c, "user_id")
	if err != nil {
		return err
	}

	if err := h.moderationService.UnblockUser(c.Request().Context(), ident, blockedUserID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBlocks retrieves the calling admin's blocks
func (h *ReportHandler) ListBlocks(c echo.Context) error {
	ident := middleware.CurrentIdentity(c)

	blocks, err := h.moderationService.ListBlocks(c.Request().Context(), ident)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, blocks)
}
