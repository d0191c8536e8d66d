package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
)

// ErrSubmissionNotFound is returned when no submission matches.
var ErrSubmissionNotFound = errors.New("submission not found")

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

var submissionSortColumns = map[string]string{
	"submitted_at": "submitted_at",
	"duration":     "duration",
	"answered":     "answered",
	"created_at":   "created_at",
}

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s *SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	return s.db.WithContext(ctx).Create(submission).Error
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) GetBySession(ctx context.Context, sessionID string) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("submitted_at ASC").
		Find(&submissions).Error
	return submissions, err
}

func (s *SubmissionPostgreSQL) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var submissions []*models.Submission
	var total int64

	// count before paging
	query := s.applyFilters(s.db.WithContext(ctx).Model(&models.Submission{}), filters)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := s.applyPaginationAndSort(query, filters).Find(&submissions).Error; err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}

func (s *SubmissionPostgreSQL) MarkAccepted(ctx context.Context, id uint, attemptID string) error {
	return s.updateStatus(ctx, id, map[string]interface{}{
		"status":     models.SubmissionAccepted,
		"attempt_id": attemptID,
		"error":      nil,
	})
}

func (s *SubmissionPostgreSQL) MarkFailed(ctx context.Context, id uint, reason string) error {
	return s.updateStatus(ctx, id, map[string]interface{}{
		"status": models.SubmissionFailed,
		"error":  reason,
	})
}

func (s *SubmissionPostgreSQL) GetUserStats(ctx context.Context, userID string) (*repositories.SubmissionStats, error) {
	var row struct {
		Total           int64
		Accepted        int64
		Failed          int64
		TimedOut        int64
		AverageDuration float64
	}

	err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS accepted,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS failed,
			COALESCE(SUM(CASE WHEN "trigger" = ? THEN 1 ELSE 0 END), 0) AS timed_out,
			COALESCE(AVG(duration), 0) AS average_duration`,
			models.SubmissionAccepted, models.SubmissionFailed, models.TriggerTimeUp).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("submission stats: %w", err)
	}

	return &repositories.SubmissionStats{
		Total:           row.Total,
		Accepted:        row.Accepted,
		Failed:          row.Failed,
		TimedOut:        row.TimedOut,
		AverageDuration: row.AverageDuration,
	}, nil
}

func (s *SubmissionPostgreSQL) updateStatus(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func (s *SubmissionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.TestID != "" {
		query = query.Where("test_id = ?", filters.TestID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	return query
}

func (s *SubmissionPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	column, ok := submissionSortColumns[filters.SortBy]
	if !ok {
		column = "submitted_at"
	}
	order := "DESC"
	if filters.SortOrder == "asc" {
		order = "ASC"
	}
	query = query.Order(column + " " + order)

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	query = query.Limit(limit)
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
