package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionAccepted SubmissionStatus = "accepted"
	SubmissionFailed   SubmissionStatus = "failed"
)

type SubmissionTrigger string

const (
	TriggerLearner SubmissionTrigger = "learner"
	TriggerTimeUp  SubmissionTrigger = "time_up"
)

// Submission records every attempt the service forwarded upstream.
type Submission struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	SessionID string `json:"session_id" gorm:"not null;size:64;index"`
	TestID    string `json:"test_id" gorm:"not null;size:64;index"`
	UserID    string `json:"user_id" gorm:"not null;size:255;index"`
	AttemptID string `json:"attempt_id" gorm:"size:64"`

	PartIDs  datatypes.JSON `json:"part_ids" gorm:"type:jsonb"` // []string
	Answers  datatypes.JSON `json:"answers" gorm:"type:jsonb"`  // []QuestionAnswer
	Answered int            `json:"answered"`
	Flagged  int            `json:"flagged"`
	Duration int            `json:"duration"` // seconds

	Trigger SubmissionTrigger `json:"trigger" gorm:"size:20;default:learner"`
	Status  SubmissionStatus  `json:"status" gorm:"size:20;default:pending;index"`
	Error   *string           `json:"error,omitempty" gorm:"type:text"`

	SubmittedAt time.Time      `json:"submitted_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Submission) TableName() string {
	return "session_submissions"
}
