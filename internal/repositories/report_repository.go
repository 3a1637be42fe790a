package repositories

import (
	"time"

	"github.com/google/uuid"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportRepository defines the interface for report data operations
type ReportRepository interface {
	WithTx(tx *gorm.DB) ReportRepository
	// InsertReport inserts the report unless one already exists for the same
	// (reporter, content type, content id). Returns false without error on
	// conflict, so the uniqueness invariant holds under concurrent submits.
	InsertReport(report *models.Report) (bool, error)
	GetReportByID(id uuid.UUID) (*models.Report, error)
	ListReports(status string, offset, limit int) ([]models.Report, error)
	CountReports(status string) (int64, error)
	// MarkResolved resolves a pending report. Returns false if the report is
	// missing or already resolved, leaving prior review fields untouched.
	MarkResolved(id uuid.UUID, adminID uint, actionTaken string, at time.Time) (bool, error)
}

// PostgresReportRepository implements ReportRepository for PostgreSQL
type PostgresReportRepository struct {
	db *gorm.DB
}

// NewPostgresReportRepository creates a new PostgresReportRepository
func NewPostgresReportRepository(db *gorm.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *PostgresReportRepository) WithTx(tx *gorm.DB) ReportRepository {
	return &PostgresReportRepository{db: tx}
}

// InsertReport inserts a report with insert-or-conflict semantics
func (r *PostgresReportRepository) InsertReport(report *models.Report) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reporter_id"}, {Name: "content_type"}, {Name: "content_id"}},
		DoNothing: true,
	}).Create(report)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetReportByID retrieves a report by ID
func (r *PostgresReportRepository) GetReportByID(id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *PostgresReportRepository) scopeByStatus(status string) *gorm.DB {
	query := r.db.Model(&models.Report{})
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	return query
}

// ListReports retrieves a page of reports, newest first
func (r *PostgresReportRepository) ListReports(status string, offset, limit int) ([]models.Report, error) {
	var reports []models.Report
	err := r.scopeByStatus(status).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// CountReports counts reports under the same filter
func (r *PostgresReportRepository) CountReports(status string) (int64, error) {
	var count int64
	err := r.scopeByStatus(status).Count(&count).Error
	return count, err
}

// MarkResolved transitions pending -> resolved. The status guard in the
// WHERE clause makes the transition terminal even under concurrent reviews.
func (r *PostgresReportRepository) MarkResolved(id uuid.UUID, adminID uint, actionTaken string, at time.Time) (bool, error) {
	result := r.db.Model(&models.Report{}).
		Where("id = ? AND status = ?", id, "pending").
		Updates(map[string]interface{}{
			"status":       "resolved",
			"reviewed_by":  adminID,
			"reviewed_at":  at,
			"action_taken": actionTaken,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
