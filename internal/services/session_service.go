package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/exam-session-service/internal/events"
	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
	"github.com/SAP-F-2025/exam-session-service/internal/session"
	"github.com/SAP-F-2025/exam-session-service/internal/validator"
)

const defaultSubmitTimeout = 30 * time.Second

// AttemptSubmitter forwards a finished attempt upstream.
type AttemptSubmitter interface {
	Submit(ctx context.Context, req models.SubmitPracticeRequest) (*models.TestAttempt, error)
}

// IdentityResolver asks the platform who the caller's token belongs to.
type IdentityResolver interface {
	BasicInfo(ctx context.Context, userID string) (*models.BasicUserInfo, error)
}

type SessionServiceConfig struct {
	// Identities confirms token subjects with the platform. When nil, the
	// unverified token subject alone decides session ownership.
	Identities         IdentityResolver
	DefaultPartMinutes int
	AutoSubmitOnTimeUp bool
	Scheduler          session.Scheduler // nil means wall-clock ticks
	TickInterval       time.Duration
	SubmitTimeout      time.Duration
}

type examSession struct {
	id        string
	userID    string
	testID    string
	partIDs   []string
	token     string
	startedAt time.Time
	tracker   *session.Tracker

	mu         sync.Mutex
	submitting bool
}

func (e *examSession) currentToken() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token
}

type sessionService struct {
	fetcher   session.SnapshotFetcher
	submitter AttemptSubmitter
	repo      repositories.SubmissionRepository
	publisher events.EventPublisher
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
	config    SessionServiceConfig

	mu       sync.RWMutex
	sessions map[string]*examSession
}

func NewSessionService(
	fetcher session.SnapshotFetcher,
	submitter AttemptSubmitter,
	repo repositories.SubmissionRepository,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	config SessionServiceConfig,
) SessionService {
	if config.DefaultPartMinutes <= 0 {
		config.DefaultPartMinutes = models.DefaultPartDurationMinutes
	}
	if config.SubmitTimeout <= 0 {
		config.SubmitTimeout = defaultSubmitTimeout
	}
	return &sessionService{
		fetcher:   fetcher,
		submitter: submitter,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "exam-session-service", Component: "sessions"}),
		validator: validator,
		config:    config,
		sessions:  make(map[string]*examSession),
	}
}

// ===== LIFECYCLE =====

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest, userID string) (state *SessionState, err error) {
	op := s.ops.WithOperation(ctx, "start_session", userID)
	var sessionID string
	defer func() { op.LogResult(sessionID, err) }()

	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err = s.verifyIdentity(ctx, userID); err != nil {
		return nil, err
	}

	tracker := session.NewTracker(
		session.WithScheduler(s.config.Scheduler),
		session.WithTickInterval(s.config.TickInterval),
	)
	if err = tracker.LoadSnapshot(ctx, s.fetcher, req.TestID, req.PartIDs); err != nil {
		return nil, fmt.Errorf("failed to load test content: %w", err)
	}

	snapshot := tracker.Snapshot()
	partIDs := req.PartIDs
	if len(partIDs) == 0 {
		partIDs = snapshot.PartIDs()
	}

	sess := &examSession{
		id:        uuid.NewString(),
		userID:    userID,
		testID:    req.TestID,
		partIDs:   partIDs,
		token:     gateway.TokenFromContext(ctx),
		startedAt: time.Now().UTC(),
		tracker:   tracker,
	}
	sessionID = sess.id

	limit := s.timeLimitFor(snapshot, req)
	timer := tracker.Timer()
	timer.OnTimeUp(func() { s.handleTimeUp(sess) })
	timer.SetTimeLimit(limit)
	timer.Start()

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.publish(ctx, events.NewSessionEvent(events.EventSessionStarted, sess.id, events.SessionStartedEvent{
		TestID:           sess.testID,
		TestName:         snapshot.TestName,
		UserID:           userID,
		PartIDs:          partIDs,
		QuestionCount:    len(snapshot.Questions()),
		TimeLimitMinutes: limit,
		StartedAt:        sess.startedAt,
	}))

	return s.stateOf(sess), nil
}

// timeLimitFor prefers an explicit limit, then part durations, then the
// per-part default for every requested part.
func (s *sessionService) timeLimitFor(snapshot *models.TestSnapshot, req *StartSessionRequest) int {
	if req.TimeLimitMinutes != nil {
		return *req.TimeLimitMinutes
	}
	if len(snapshot.Parts) == 0 {
		return len(req.PartIDs) * s.config.DefaultPartMinutes
	}
	total := 0
	for _, p := range snapshot.Parts {
		if p.DurationMinutes > 0 {
			total += p.DurationMinutes
		} else {
			total += s.config.DefaultPartMinutes
		}
	}
	return total
}

func (s *sessionService) Get(ctx context.Context, sessionID, userID string) (*SessionState, error) {
	sess, err := s.lookup(ctx, sessionID, userID, "read")
	if err != nil {
		return nil, err
	}
	return s.stateOf(sess), nil
}

func (s *sessionService) Submit(ctx context.Context, sessionID, userID string) (result *SubmitResult, err error) {
	op := s.ops.WithOperation(ctx, "submit_session", userID)
	defer func() { op.LogResult(sessionID, err) }()

	sess, err := s.lookup(ctx, sessionID, userID, "submit")
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, sess, models.TriggerLearner)
}

func (s *sessionService) submit(ctx context.Context, sess *examSession, trigger models.SubmissionTrigger) (*SubmitResult, error) {
	sess.mu.Lock()
	if sess.submitting {
		sess.mu.Unlock()
		return nil, ErrSessionSubmitting
	}
	sess.submitting = true
	sess.mu.Unlock()
	defer func() {
		sess.mu.Lock()
		sess.submitting = false
		sess.mu.Unlock()
	}()

	if !s.isActive(sess) {
		return nil, ErrSessionAlreadySubmitted
	}

	tracker := sess.tracker
	if tracker.Snapshot() == nil {
		return nil, ErrSessionNotLoaded
	}

	timer := tracker.Timer()
	wasRunning := timer.Snapshot().Running
	timer.Stop()

	progress := tracker.Progress()
	answers := tracker.Answers()
	duration := s.durationOf(sess)

	req := models.SubmitPracticeRequest{
		TestID:          sess.testID,
		UserID:          sess.userID,
		QuestionAnswers: answers,
		ListPartID:      sess.partIDs,
		Duration:        duration,
	}

	record := s.recordSubmission(ctx, sess, req, progress, trigger)

	attempt, err := s.submitter.Submit(ctx, req)
	if err != nil {
		if record != nil {
			if markErr := s.repo.MarkFailed(ctx, record.ID, err.Error()); markErr != nil {
				s.logger.Error("Failed to mark submission failed", "submission_id", record.ID, "error", markErr)
			}
		}
		// The learner keeps the session and may retry.
		if wasRunning {
			timer.Start()
		}
		return nil, fmt.Errorf("failed to submit session: %w", err)
	}

	result := &SubmitResult{
		SessionID: sess.id,
		Attempt:   attempt,
		Trigger:   trigger,
		Answered:  progress.Answered,
		Total:     progress.Total,
		Flagged:   progress.Flagged,
		Duration:  duration,
	}
	attemptID := ""
	if attempt != nil {
		attemptID = attempt.ID
	}
	if record != nil {
		result.SubmissionID = record.ID
		if markErr := s.repo.MarkAccepted(ctx, record.ID, attemptID); markErr != nil {
			s.logger.Error("Failed to mark submission accepted", "submission_id", record.ID, "error", markErr)
		}
	}

	s.remove(sess.id)
	tracker.ResetState()

	s.publish(ctx, events.NewSessionEvent(events.EventSessionSubmitted, sess.id, events.SessionSubmittedEvent{
		TestID:      sess.testID,
		UserID:      sess.userID,
		AttemptID:   attemptID,
		PartIDs:     sess.partIDs,
		Answered:    progress.Answered,
		Flagged:     progress.Flagged,
		Duration:    duration,
		Trigger:     string(trigger),
		SubmittedAt: time.Now().UTC(),
	}))

	return result, nil
}

// durationOf is the consumed part of the limit, or wall time when the
// session runs without one.
func (s *sessionService) durationOf(sess *examSession) int {
	timer := sess.tracker.Timer()
	if timer.Snapshot().LimitSeconds > 0 {
		return timer.Elapsed()
	}
	return int(time.Since(sess.startedAt).Seconds())
}

// recordSubmission stores the attempt before it goes upstream. A storage
// failure is logged and does not block the submission.
func (s *sessionService) recordSubmission(ctx context.Context, sess *examSession, req models.SubmitPracticeRequest, progress session.Progress, trigger models.SubmissionTrigger) *models.Submission {
	partIDs, err := json.Marshal(req.ListPartID)
	if err != nil {
		s.logger.Error("Failed to encode part ids", "session_id", sess.id, "error", err)
		return nil
	}
	answers, err := json.Marshal(req.QuestionAnswers)
	if err != nil {
		s.logger.Error("Failed to encode answers", "session_id", sess.id, "error", err)
		return nil
	}

	record := &models.Submission{
		SessionID:   sess.id,
		TestID:      sess.testID,
		UserID:      sess.userID,
		PartIDs:     datatypes.JSON(partIDs),
		Answers:     datatypes.JSON(answers),
		Answered:    progress.Answered,
		Flagged:     progress.Flagged,
		Duration:    req.Duration,
		Trigger:     trigger,
		Status:      models.SubmissionPending,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("Failed to record submission", "session_id", sess.id, "error", err)
		return nil
	}
	return record
}

func (s *sessionService) Abandon(ctx context.Context, sessionID, userID string) (err error) {
	op := s.ops.WithOperation(ctx, "abandon_session", userID)
	defer func() { op.LogResult(sessionID, err) }()

	sess, err := s.lookup(ctx, sessionID, userID, "abandon")
	if err != nil {
		return err
	}

	answered := sess.tracker.Progress().Answered
	s.remove(sess.id)
	sess.tracker.ResetState()

	s.publish(ctx, events.NewSessionEvent(events.EventSessionAbandoned, sess.id, events.SessionAbandonedEvent{
		TestID:      sess.testID,
		UserID:      sess.userID,
		Answered:    answered,
		AbandonedAt: time.Now().UTC(),
	}))
	return nil
}

// Submissions lists the stored submissions of a session, including those
// of sessions that are already closed.
func (s *sessionService) Submissions(ctx context.Context, sessionID, userID string) ([]*models.Submission, error) {
	if err := s.verifyIdentity(ctx, userID); err != nil {
		return nil, err
	}
	submissions, err := s.repo.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	for _, sub := range submissions {
		if sub.UserID != userID {
			return nil, NewPermissionError(userID, sessionID, "list submissions of", "session belongs to another user")
		}
	}
	return submissions, nil
}

// handleTimeUp runs on the countdown goroutine once the limit is reached.
func (s *sessionService) handleTimeUp(sess *examSession) {
	progress := sess.tracker.Progress()
	timer := sess.tracker.Timer().Snapshot()

	ctx, cancel := context.WithTimeout(gateway.WithToken(context.Background(), sess.currentToken()), s.config.SubmitTimeout)
	defer cancel()

	s.logger.Info("Session time is up",
		"session_id", sess.id,
		"answered", progress.Answered,
		"auto_submit", s.config.AutoSubmitOnTimeUp)

	s.publish(ctx, events.NewSessionEvent(events.EventSessionTimeUp, sess.id, events.SessionTimeUpEvent{
		TestID:       sess.testID,
		UserID:       sess.userID,
		Answered:     progress.Answered,
		Total:        progress.Total,
		AutoSubmit:   s.config.AutoSubmitOnTimeUp,
		TimedOutAt:   time.Now().UTC(),
		LimitSeconds: timer.LimitSeconds,
	}))

	if !s.config.AutoSubmitOnTimeUp {
		return
	}
	if _, err := s.submit(ctx, sess, models.TriggerTimeUp); err != nil {
		s.logger.Error("Auto-submit failed", "session_id", sess.id, "error", err)
	}
}

// ===== RESPONSES =====

func (s *sessionService) SetResponse(ctx context.Context, sessionID, userID, questionID string, update models.ResponseUpdate) (resp *models.Response, err error) {
	op := s.ops.WithOperation(ctx, "set_response", userID)
	defer func() { op.LogResult(sessionID, err) }()

	if err = s.validator.Session().ValidateResponse(questionID, update); err != nil {
		return nil, err
	}
	sess, err := s.writable(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err = s.checkOptions(sess, questionID, update.SelectedOptionIDs); err != nil {
		return nil, err
	}
	return sess.tracker.SetResponse(questionID, update), nil
}

func (s *sessionService) ToggleOption(ctx context.Context, sessionID, userID, questionID, optionID string, selected bool) (resp *models.Response, err error) {
	op := s.ops.WithOperation(ctx, "toggle_option", userID)
	defer func() { op.LogResult(sessionID, err) }()

	if err = s.validator.Session().ValidateOption(questionID, optionID); err != nil {
		return nil, err
	}
	sess, err := s.writable(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err = s.checkOptions(sess, questionID, []string{optionID}); err != nil {
		return nil, err
	}
	return sess.tracker.ToggleSelectedOption(questionID, optionID, selected), nil
}

// checkOptions rejects options that belong to another question of the loaded test.
func (s *sessionService) checkOptions(sess *examSession, questionID string, optionIDs []string) error {
	foreign := s.validator.Session().ForeignOptions(sess.tracker.Snapshot(), questionID, optionIDs)
	if len(foreign) == 0 {
		return nil
	}
	return NewBusinessRuleError(RuleOptionOfQuestion,
		fmt.Sprintf("option %s does not belong to question %s", strings.Join(foreign, ", "), questionID),
		map[string]interface{}{"question_id": questionID, "option_ids": foreign})
}

func (s *sessionService) GetResponse(ctx context.Context, sessionID, userID, questionID string) (*ResponseView, error) {
	sess, err := s.lookup(ctx, sessionID, userID, "read")
	if err != nil {
		return nil, err
	}
	resp, _ := sess.tracker.Response(questionID)
	return &ResponseView{
		QuestionID: questionID,
		Answered:   sess.tracker.IsAnswered(questionID),
		InReview:   sess.tracker.IsInReview(questionID),
		Response:   resp,
	}, nil
}

func (s *sessionService) ClearResponse(ctx context.Context, sessionID, userID, questionID string) error {
	sess, err := s.writable(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	sess.tracker.ClearResponse(questionID)
	return nil
}

func (s *sessionService) ClearAllResponses(ctx context.Context, sessionID, userID string) error {
	sess, err := s.writable(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	sess.tracker.ClearAllResponses()
	return nil
}

// ===== REVIEW FLAGS =====

func (s *sessionService) AddToReview(ctx context.Context, sessionID, userID, questionID string) ([]string, error) {
	sess, err := s.lookup(ctx, sessionID, userID, "flag")
	if err != nil {
		return nil, err
	}
	sess.tracker.AddToReview(questionID)
	return sess.tracker.ReviewList(), nil
}

func (s *sessionService) RemoveFromReview(ctx context.Context, sessionID, userID, questionID string) ([]string, error) {
	sess, err := s.lookup(ctx, sessionID, userID, "flag")
	if err != nil {
		return nil, err
	}
	sess.tracker.RemoveFromReview(questionID)
	return sess.tracker.ReviewList(), nil
}

func (s *sessionService) ClearReview(ctx context.Context, sessionID, userID string) error {
	sess, err := s.lookup(ctx, sessionID, userID, "flag")
	if err != nil {
		return err
	}
	sess.tracker.ClearReview()
	return nil
}

// ===== TIMER =====

func (s *sessionService) SetTimeLimit(ctx context.Context, sessionID, userID string, minutes int) (*session.TimerSnapshot, error) {
	if err := s.validator.Session().ValidateTimeLimit(minutes); err != nil {
		return nil, err
	}
	return s.withTimer(ctx, sessionID, userID, func(c *session.Countdown) { c.SetTimeLimit(minutes) })
}

func (s *sessionService) StartTimer(ctx context.Context, sessionID, userID string) (*session.TimerSnapshot, error) {
	return s.withTimer(ctx, sessionID, userID, (*session.Countdown).Start)
}

func (s *sessionService) StopTimer(ctx context.Context, sessionID, userID string) (*session.TimerSnapshot, error) {
	return s.withTimer(ctx, sessionID, userID, (*session.Countdown).Stop)
}

func (s *sessionService) ResetTimer(ctx context.Context, sessionID, userID string) (*session.TimerSnapshot, error) {
	return s.withTimer(ctx, sessionID, userID, (*session.Countdown).Reset)
}

func (s *sessionService) withTimer(ctx context.Context, sessionID, userID string, fn func(*session.Countdown)) (*session.TimerSnapshot, error) {
	sess, err := s.lookup(ctx, sessionID, userID, "control timer of")
	if err != nil {
		return nil, err
	}
	timer := sess.tracker.Timer()
	fn(timer)
	snap := timer.Snapshot()
	return &snap, nil
}

func (s *sessionService) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*examSession)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.tracker.Timer().Stop()
	}
}

// ===== HELPERS =====

// lookup returns the caller's session. A token the session has not seen yet
// is confirmed with the platform before it is trusted.
func (s *sessionService) lookup(ctx context.Context, sessionID, userID, action string) (*examSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.userID != userID {
		return nil, NewPermissionError(userID, sessionID, action, "session belongs to another user")
	}
	if s.config.Identities == nil {
		return sess, nil
	}

	token := gateway.TokenFromContext(ctx)
	if token != "" && token == sess.currentToken() {
		return sess, nil
	}
	if err := s.verifyIdentity(ctx, userID); err != nil {
		if errors.Is(err, ErrForbidden) {
			return nil, NewPermissionError(userID, sessionID, action, "token is not confirmed by the platform")
		}
		return nil, err
	}
	sess.mu.Lock()
	sess.token = token
	sess.mu.Unlock()
	return sess, nil
}

// verifyIdentity checks that the platform resolves the caller's token to
// userID. Rejections wrap ErrForbidden.
func (s *sessionService) verifyIdentity(ctx context.Context, userID string) error {
	if s.config.Identities == nil {
		return nil
	}
	if gateway.TokenFromContext(ctx) == "" {
		return fmt.Errorf("%w: no token to confirm", ErrForbidden)
	}
	info, err := s.config.Identities.BasicInfo(ctx, "")
	if err != nil {
		if gateway.IsUnauthorized(err) {
			return fmt.Errorf("%w: %v", ErrForbidden, err)
		}
		return fmt.Errorf("failed to confirm identity: %w", err)
	}
	if info.ID != userID {
		s.logger.Warn("Token subject does not match platform identity", "subject", userID, "platform_user_id", info.ID)
		return fmt.Errorf("%w: token subject does not match platform identity", ErrForbidden)
	}
	return nil
}

// writable rejects response changes once the countdown has run out.
func (s *sessionService) writable(ctx context.Context, sessionID, userID string) (*examSession, error) {
	sess, err := s.lookup(ctx, sessionID, userID, "answer in")
	if err != nil {
		return nil, err
	}
	if sess.tracker.Timer().TimedOut() {
		return nil, ErrSessionTimedOut
	}
	return sess, nil
}

func (s *sessionService) isActive(sess *examSession) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sess.id] == sess
}

func (s *sessionService) remove(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *sessionService) stateOf(sess *examSession) *SessionState {
	t := sess.tracker
	snapshot := t.Snapshot()
	return &SessionState{
		ID:        sess.id,
		TestID:    sess.testID,
		UserID:    sess.userID,
		PartIDs:   sess.partIDs,
		StartedAt: sess.startedAt,
		Snapshot:  snapshot,
		Questions: snapshot.Questions(),
		Answers:   t.Answers(),
		Review:    t.ReviewList(),
		Timer:     t.Timer().Snapshot(),
		Progress:  t.Progress(),
		Loading:   t.Loading(),
		Error:     t.Err(),
	}
}

func (s *sessionService) publish(ctx context.Context, event *events.SessionEvent) {
	if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish session event",
			"event_type", event.Type,
			"session_id", event.SessionID,
			"error", err)
	}
}
