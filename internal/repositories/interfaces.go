package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

type SubmissionFilters struct {
	UserID    string                   `json:"user_id"`
	TestID    string                   `json:"test_id"`
	Status    *models.SubmissionStatus `json:"status"`
	DateFrom  *time.Time               `json:"date_from"`
	DateTo    *time.Time               `json:"date_to"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
	SortBy    string                   `json:"sort_by"`    // "submitted_at", "duration", "answered"
	SortOrder string                   `json:"sort_order"` // "asc", "desc"
}

type SubmissionStats struct {
	Total           int64   `json:"total"`
	Accepted        int64   `json:"accepted"`
	Failed          int64   `json:"failed"`
	TimedOut        int64   `json:"timed_out"`
	AverageDuration float64 `json:"average_duration"`
}

// SubmissionRepository stores the audit trail of forwarded submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	GetBySession(ctx context.Context, sessionID string) ([]*models.Submission, error)
	List(ctx context.Context, filters SubmissionFilters) ([]*models.Submission, int64, error)
	MarkAccepted(ctx context.Context, id uint, attemptID string) error
	MarkFailed(ctx context.Context, id uint, reason string) error
	GetUserStats(ctx context.Context, userID string) (*SubmissionStats, error)
}
