package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mrskaggs/forkful/backend/internal/apperrors"
	"github.com/mrskaggs/forkful/backend/internal/authz"
	"github.com/mrskaggs/forkful/backend/internal/identity"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"github.com/mrskaggs/forkful/backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportPage is one page of reports for admin review.
type ReportPage struct {
	Reports []models.Report `json:"reports"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

// ModerationService owns the report lifecycle and user blocking. Report
// resolution and blocking are independent operations; review-with-ban
// composes both inside one transaction.
type ModerationService struct {
	db          *gorm.DB
	reports     repositories.ReportRepository
	blocks      repositories.BlockRepository
	reportables map[string]Reportable
	policy      *authz.Policy
	logger      *zap.Logger
}

// NewModerationService creates a new ModerationService
func NewModerationService(db *gorm.DB, reports repositories.ReportRepository, blocks repositories.BlockRepository, comments repositories.CommentRepository, messages repositories.ChatMessageRepository, policy *authz.Policy, logger *zap.Logger) *ModerationService {
	return &ModerationService{
		db:      db,
		reports: reports,
		blocks:  blocks,
		reportables: map[string]Reportable{
			models.ReportContentComment:     &commentReportable{comments: comments},
			models.ReportContentChatMessage: &chatMessageReportable{messages: messages},
			models.ReportContentProfile:     profileReportable{},
			models.ReportContentOther:       otherReportable{},
		},
		policy: policy,
		logger: logger.Named("moderation"),
	}
}

// SubmitReport files a report against content or a user. The reported user
// is derived by dereferencing the content type; duplicates collapse to a
// conflict with no new row.
func (s *ModerationService) SubmitReport(ctx context.Context, reporterID uint, contentType, contentID, reason, description string) (*models.Report, error) {
	reportable, ok := s.reportables[contentType]
	if !ok {
		return nil, apperrors.Validation("invalid_content_type", "unknown content type")
	}

	exists, err := reportable.Exists(ctx, contentID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	if !exists {
		return nil, apperrors.NotFound("content_not_found", "reported content not found")
	}

	reportedUserID, err := reportable.ResolveOwner(ctx, contentID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	report := &models.Report{
		ID:             uuid.New(),
		ReporterID:     reporterID,
		ReportedUserID: reportedUserID,
		ContentType:    contentType,
		ContentID:      contentID,
		Reason:         reason,
		Description:    description,
		Status:         "pending",
	}

	inserted, err := s.reports.InsertReport(report)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	if !inserted {
		return nil, apperrors.Conflict("duplicate_report", "you have already reported this content")
	}

	s.logger.Info("report submitted",
		zap.String("reportID", report.ID.String()),
		zap.Uint("reporterID", reporterID),
		zap.String("contentType", contentType))
	return report, nil
}

// ListReports returns a page of reports for admin review.
func (s *ModerationService) ListReports(ctx context.Context, admin identity.Identity, status string, page, limit int) (*ReportPage, error) {
	if !s.policy.CanReviewReports(admin) {
		return nil, apperrors.Permission("admin_required", "admin role required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	reports, err := s.reports.ListReports(status, (page-1)*limit, limit)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	total, err := s.reports.CountReports(status)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	return &ReportPage{Reports: reports, Total: total, Page: page, Limit: limit}, nil
}

// ReviewReport resolves a pending report. Resolved is terminal: reviewing a
// resolved report fails and leaves prior review fields untouched. A ban_user
// action also inserts a block for (admin, reported user) in the same
// transaction, ignoring the conflict when the pair already exists.
func (s *ModerationService) ReviewReport(ctx context.Context, reportID uuid.UUID, admin identity.Identity, action, actionTaken string) (*models.Report, error) {
	if !s.policy.CanReviewReports(admin) {
		return nil, apperrors.Permission("admin_required", "admin role required")
	}
	switch action {
	case models.ReportActionWarnUser, models.ReportActionBanUser, models.ReportActionModerateContent, models.ReportActionDismiss:
	default:
		return nil, apperrors.Validation("invalid_action", "unknown review action")
	}

	var report *models.Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txReports := s.reports.WithTx(tx)

		existing, err := txReports.GetReportByID(reportID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("report_not_found", "report not found")
			}
			return apperrors.Transient(err)
		}

		resolved, err := txReports.MarkResolved(reportID, admin.UserID, actionTaken, time.Now())
		if err != nil {
			return apperrors.Transient(err)
		}
		if !resolved {
			return apperrors.NotFound("already_reviewed", "report has already been reviewed")
		}

		if action == models.ReportActionBanUser && existing.ReportedUserID != 0 {
			block := &models.Block{
				BlockerID:     admin.UserID,
				BlockedUserID: existing.ReportedUserID,
				Reason:        actionTaken,
			}
			if _, err := s.blocks.WithTx(tx).InsertBlock(block); err != nil {
				return apperrors.Transient(err)
			}
		}

		report, err = txReports.GetReportByID(reportID)
		if err != nil {
			return apperrors.Transient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("report reviewed",
		zap.String("reportID", reportID.String()),
		zap.Uint("adminID", admin.UserID),
		zap.String("action", action))
	return report, nil
}

// BlockUser creates a block. Admin-only; self-blocks and duplicate pairs
// are rejected.
func (s *ModerationService) BlockUser(ctx context.Context, admin identity.Identity, blockedUserID uint, reason string) (*models.Block, error) {
	if !s.policy.CanBlock(admin) {
		return nil, apperrors.Permission("admin_required", "admin role required")
	}
	if admin.UserID == blockedUserID {
		return nil, apperrors.Conflict("self_block", "you cannot block yourself")
	}

	block := &models.Block{
		BlockerID:     admin.UserID,
		BlockedUserID: blockedUserID,
		Reason:        reason,
	}
	inserted, err := s.blocks.InsertBlock(block)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	if !inserted {
		return nil, apperrors.Conflict("duplicate_block", "user is already blocked")
	}

	s.logger.Info("user blocked", zap.Uint("adminID", admin.UserID), zap.Uint("blockedUserID", blockedUserID))
	return block, nil
}

// UnblockUser removes a block pair created by this admin. Missing pairs
// report not-found.
func (s *ModerationService) UnblockUser(ctx context.Context, admin identity.Identity, blockedUserID uint) error {
	if !s.policy.CanBlock(admin) {
		return apperrors.Permission("admin_required", "admin role required")
	}

	deleted, err := s.blocks.DeleteBlock(admin.UserID, blockedUserID)
	if err != nil {
		return apperrors.Transient(err)
	}
	if !deleted {
		return apperrors.NotFound("block_not_found", "no such block")
	}

	s.logger.Info("user unblocked", zap.Uint("adminID", admin.UserID), zap.Uint("blockedUserID", blockedUserID))
	return nil
}

// ListBlocks returns only the blocks created by the calling admin.
func (s *ModerationService) ListBlocks(ctx context.Context, admin identity.Identity) ([]models.Block, error) {
	if !s.policy.CanBlock(admin) {
		return nil, apperrors.Permission("admin_required", "admin role required")
	}
	blocks, err := s.blocks.ListByBlocker(admin.UserID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	return blocks, nil
}

// IsBlocked reports whether any admin has blocked the user. Consumed by the
// chat gateway's permission checks.
func (s *ModerationService) IsBlocked(ctx context.Context, userID uint) (bool, error) {
	return s.blocks.IsBlocked(userID)
}
