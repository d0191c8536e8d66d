package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the lifecycle events of an exam session
type EventType string

const (
	EventSessionStarted   EventType = "session.started"
	EventSessionTimeUp    EventType = "session.time_up"
	EventSessionSubmitted EventType = "session.submitted"
	EventSessionAbandoned EventType = "session.abandoned"
)

const (
	eventSource  = "exam-session-service"
	eventVersion = "1.0"
)

// SessionEvent is the envelope every session event is published in
type SessionEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	SessionID string                 `json:"session_id"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Session event payloads

type SessionStartedEvent struct {
	TestID           string    `json:"test_id"`
	TestName         string    `json:"test_name"`
	UserID           string    `json:"user_id"`
	PartIDs          []string  `json:"part_ids"`
	QuestionCount    int       `json:"question_count"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	StartedAt        time.Time `json:"started_at"`
}

type SessionTimeUpEvent struct {
	TestID       string    `json:"test_id"`
	UserID       string    `json:"user_id"`
	Answered     int       `json:"answered"`
	Total        int       `json:"total"`
	AutoSubmit   bool      `json:"auto_submit"`
	TimedOutAt   time.Time `json:"timed_out_at"`
	LimitSeconds int       `json:"limit_seconds"`
}

type SessionSubmittedEvent struct {
	TestID      string    `json:"test_id"`
	UserID      string    `json:"user_id"`
	AttemptID   string    `json:"attempt_id,omitempty"`
	PartIDs     []string  `json:"part_ids"`
	Answered    int       `json:"answered"`
	Flagged     int       `json:"flagged"`
	Duration    int       `json:"duration"` // seconds
	Trigger     string    `json:"trigger"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type SessionAbandonedEvent struct {
	TestID      string    `json:"test_id"`
	UserID      string    `json:"user_id"`
	Answered    int       `json:"answered"`
	AbandonedAt time.Time `json:"abandoned_at"`
}

// NewSessionEvent wraps data in a fresh envelope
func NewSessionEvent(eventType EventType, sessionID string, data interface{}) *SessionEvent {
	return &SessionEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		SessionID: sessionID,
		Data:      data,
	}
}

func GenerateEventID() string {
	return uuid.NewString()
}
