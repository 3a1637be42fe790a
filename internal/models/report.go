package models

import (
	"time"

	"github.com/google/uuid"
)

// Report content types
const (
	ReportContentComment     = "comment"
	ReportContentChatMessage = "chat_message"
	ReportContentProfile     = "profile"
	ReportContentOther       = "other"
)

// Report review actions
const (
	ReportActionWarnUser        = "warn_user"
	ReportActionBanUser         = "ban_user"
	ReportActionModerateContent = "moderate_content"
	ReportActionDismiss         = "dismiss"
)

// Report represents a user-submitted abuse report. At most one report may
// exist per (reporter, content type, content id); the unique index carries
// that invariant so concurrent submissions collapse to a conflict.
type Report struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ReporterID     uint       `json:"reporter_id" gorm:"not null;uniqueIndex:idx_report_dedupe"`
	ReportedUserID uint       `json:"reported_user_id" gorm:"index"`
	ContentType    string     `json:"content_type" gorm:"size:20;not null;uniqueIndex:idx_report_dedupe"`
	ContentID      string     `json:"content_id" gorm:"size:64;not null;uniqueIndex:idx_report_dedupe"`
	Reason         string     `json:"reason" gorm:"size:20;not null"` // spam, harassment, inappropriate, offensive, other
	Description    string     `json:"description,omitempty" gorm:"size:1000"`
	Status         string     `json:"status" gorm:"size:20;default:'pending';index"` // pending, resolved
	ReviewedBy     *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ActionTaken    string     `json:"action_taken,omitempty" gorm:"size:500"`
	CreatedAt      time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateReportRequest defines the request body for submitting a report
type CreateReportRequest struct {
	ContentType string `json:"content_type" validate:"required,oneof=comment chat_message profile other"`
	ContentID   string `json:"content_id" validate:"required,max=64"`
	Reason      string `json:"reason" validate:"required,oneof=spam harassment inappropriate offensive other"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// ReviewReportRequest defines the admin review body
type ReviewReportRequest struct {
	Action      string `json:"action" validate:"required,oneof=warn_user ban_user moderate_content dismiss"`
	ActionTaken string `json:"action_taken" validate:"required,min=1,max=500"`
}
