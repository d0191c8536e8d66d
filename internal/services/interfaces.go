package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/session"
)

// SessionService owns the in-progress exam sessions.
type SessionService interface {
	// Lifecycle
	Start(ctx context.Context, req *StartSessionRequest, userID string) (*SessionState, error)
	Get(ctx context.Context, sessionID, userID string) (*SessionState, error)
	Submit(ctx context.Context, sessionID, userID string) (*SubmitResult, error)
	Abandon(ctx context.Context, sessionID, userID string) error
	Submissions(ctx context.Context, sessionID, userID string) ([]*models.Submission, error)

	// Responses
	SetResponse(ctx context.Context, sessionID, userID, questionID string, update models.ResponseUpdate) (*models.Response, error)
	ToggleOption(ctx context.Context, sessionID, userID, questionID, optionID string, selected bool) (*models.Response, error)
	GetResponse(ctx context.Context, sessionID, userID, questionID string) (*ResponseView, error)
	ClearResponse(ctx context.Context, sessionID, userID, questionID string) error
	ClearAllResponses(ctx context.Context, sessionID, userID string) error

	// Review flags
	AddToReview(ctx context.Context, sessionID, userID, questionID string) ([]string, error)
	RemoveFromReview(ctx context.Context, sessionID, userID, questionID string) ([]string, error)
	ClearReview(ctx context.Context, sessionID, userID string) error

	// Timer
	SetTimeLimit(ctx context.Context, sessionID, userID string, minutes int) (*session.TimerSnapshot, error)
	StartTimer(ctx context.Context, sessionID, userID string) (*session.TimerSnapshot, error)
	StopTimer(ctx context.Context, sessionID, userID string) (*session.TimerSnapshot, error)
	ResetTimer(ctx context.Context, sessionID, userID string) (*session.TimerSnapshot, error)

	// Close stops every countdown and drops all sessions.
	Close()
}

// ResultService fetches and keeps attempt result views.
type ResultService interface {
	Overall(ctx context.Context, attemptID string) (*models.TestResultOverall, error)
	TestInfo(ctx context.Context, attemptID string) (*models.AttemptTestInfo, error)
	Analysis(ctx context.Context, attemptID string) (*models.AttemptAnalysis, error)
	Answers(ctx context.Context, attemptID string) (*models.AnswerResult, error)

	Load(ctx context.Context, attemptID string) (*ResultView, error)
	View(attemptID string) (*ResultView, bool)
	Reset(attemptID string)

	Latest(ctx context.Context, userID string, limit int, timezone string) ([]models.TestAttemptWithName, error)
	ExportAnswers(ctx context.Context, attemptID string) ([]byte, error)
}

// ===== REQUEST / RESPONSE TYPES =====

type StartSessionRequest struct {
	TestID           string   `json:"test_id" validate:"required,question_id"`
	PartIDs          []string `json:"part_ids" validate:"omitempty,dive,question_id"`
	TimeLimitMinutes *int     `json:"time_limit_minutes,omitempty" validate:"omitempty,time_limit"`
}

type SetTimeLimitRequest struct {
	Minutes int `json:"minutes" validate:"time_limit"`
}

type ToggleOptionRequest struct {
	Selected bool `json:"selected"`
}

// SessionState is the full read model of one session.
type SessionState struct {
	ID        string                    `json:"id"`
	TestID    string                    `json:"test_id"`
	UserID    string                    `json:"user_id"`
	PartIDs   []string                  `json:"part_ids"`
	StartedAt time.Time                 `json:"started_at"`
	Snapshot  *models.TestSnapshot      `json:"snapshot,omitempty"`
	Questions []models.SnapshotQuestion `json:"questions,omitempty"`
	Answers   []models.QuestionAnswer   `json:"answers"`
	Review    []string                  `json:"review"`
	Timer     session.TimerSnapshot     `json:"timer"`
	Progress  session.Progress          `json:"progress"`
	Loading   bool                      `json:"loading"`
	Error     string                    `json:"error,omitempty"`
}

type ResponseView struct {
	QuestionID string           `json:"question_id"`
	Answered   bool             `json:"answered"`
	InReview   bool             `json:"in_review"`
	Response   *models.Response `json:"response,omitempty"`
}

type SubmitResult struct {
	SessionID    string                   `json:"session_id"`
	SubmissionID uint                     `json:"submission_id,omitempty"`
	Attempt      *models.TestAttempt      `json:"attempt,omitempty"`
	Trigger      models.SubmissionTrigger `json:"trigger"`
	Answered     int                      `json:"answered"`
	Total        int                      `json:"total"`
	Flagged      int                      `json:"flagged"`
	Duration     int                      `json:"duration"` // seconds
}

// ResultView is the last fetched state of an attempt's results.
type ResultView struct {
	AttemptID string                    `json:"attempt_id"`
	Overall   *models.TestResultOverall `json:"overall,omitempty"`
	TestInfo  *models.AttemptTestInfo   `json:"test_info,omitempty"`
	Analysis  *models.AttemptAnalysis   `json:"analysis,omitempty"`
	Answers   *models.AnswerResult      `json:"answers,omitempty"`
	Loading   bool                      `json:"loading"`
	Error     string                    `json:"error,omitempty"`
	FetchedAt time.Time                 `json:"fetched_at"`
}
