package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/services"
	"github.com/SAP-F-2025/exam-session-service/internal/session"
)

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Start(ctx context.Context, req *services.StartSessionRequest, userID string) (*services.SessionState, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionState), args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, sessionID, userID string) (*services.SessionState, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionState), args.Error(1)
}

func (m *MockSessionService) Submit(ctx context.Context, sessionID, userID string) (*services.SubmitResult, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SubmitResult), args.Error(1)
}

func (m *MockSessionService) Abandon(ctx context.Context, sessionID, userID string) error {
	return m.Called(ctx, sessionID, userID).Error(0)
}

func (m *MockSessionService) Submissions(ctx context.Context, sessionID, userID string) ([]*models.Submission, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Submission), args.Error(1)
}

func (m *MockSessionService) SetResponse(ctx context.Context, sessionID, userID, questionID string, update models.ResponseUpdate) (*models.Response, error) {
	args := m.Called(ctx, sessionID, userID, questionID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func (m *MockSessionService) ToggleOption(ctx context.Context, sessionID, userID, questionID, optionID string, selected bool) (*models.Response, error) {
	args := m.Called(ctx, sessionID, userID, questionID, optionID, selected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func (m *MockSessionService) GetResponse(ctx context.Context, sessionID, userID, questionID string) (*services.ResponseView, error) {
	args := m.Called(ctx, sessionID, userID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ResponseView), args.Error(1)
}

func (m *MockSessionService) ClearResponse(ctx context.Context, sessionID, userID, questionID string) error {
	return m.Called(ctx, sessionID, userID, questionID).Error(0)
}

func (m *MockSessionService) ClearAllResponses(ctx context.Context, sessionID, userID string) error {
	return m.Called(ctx, sessionID, userID).Error(0)
}

func (m *MockSessionService) AddToReview(ctx context.Context, sessionID, userID, questionID string) ([]string, error) {
	args := m.Called(ctx, sessionID, userID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSessionService) RemoveFromReview(ctx context.Context, sessionID, userID, questionID string) ([]string, error) {
	args := m.Called(ctx, sessionID, userID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSessionService) ClearReview(ctx context.Context, sessionID, userID string) error {
	return m.Called(ctx, sessionID, userID).Error(0)
}

func (m *MockSessionService) timer(args mock.Arguments) (*session.TimerSnapshot, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.TimerSnapshot), args.Error(1)
}

func (m *MockSessionService) SetTimeLimit(ctx context.Context, sessionID, userID string, minutes int) (*session.TimerSnapshot, error) {
	return m.timer(m.Called(ctx, sessionID, userID, minutes))
}

func (m *MockSessionService) StartTimer(ctx context.Context, sessionID, userID string) (*session.TimerSnapshot, error) {
	return m.timer(m.Called(ctx, sessionID, userID))
}

func (m *MockSessionService) StopTimer(ctx context.Context, sessionID, userID string) (*session.TimerSnapshot, error) {
	return m.timer(m.Called(ctx, sessionID, userID))
}

func (m *MockSessionService) ResetTimer(ctx context.Context, sessionID, userID string) (*session.TimerSnapshot, error) {
	return m.timer(m.Called(ctx, sessionID, userID))
}

func (m *MockSessionService) Close() {
	m.Called()
}

type MockResultService struct {
	mock.Mock
}

func (m *MockResultService) Overall(ctx context.Context, attemptID string) (*models.TestResultOverall, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestResultOverall), args.Error(1)
}

func (m *MockResultService) TestInfo(ctx context.Context, attemptID string) (*models.AttemptTestInfo, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttemptTestInfo), args.Error(1)
}

func (m *MockResultService) Analysis(ctx context.Context, attemptID string) (*models.AttemptAnalysis, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttemptAnalysis), args.Error(1)
}

func (m *MockResultService) Answers(ctx context.Context, attemptID string) (*models.AnswerResult, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnswerResult), args.Error(1)
}

func (m *MockResultService) Load(ctx context.Context, attemptID string) (*services.ResultView, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ResultView), args.Error(1)
}

func (m *MockResultService) View(attemptID string) (*services.ResultView, bool) {
	args := m.Called(attemptID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*services.ResultView), args.Bool(1)
}

func (m *MockResultService) Reset(attemptID string) {
	m.Called(attemptID)
}

func (m *MockResultService) Latest(ctx context.Context, userID string, limit int, timezone string) ([]models.TestAttemptWithName, error) {
	args := m.Called(ctx, userID, limit, timezone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TestAttemptWithName), args.Error(1)
}

func (m *MockResultService) ExportAnswers(ctx context.Context, attemptID string) ([]byte, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthAPI) Signup(ctx context.Context, req models.SignupRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAuthAPI) ExchangeToken(ctx context.Context, code, provider string) (*models.TokenResponse, error) {
	args := m.Called(ctx, code, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

type MockUsersAPI struct {
	mock.Mock
}

func (m *MockUsersAPI) BasicInfo(ctx context.Context, userID string) (*models.BasicUserInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BasicUserInfo), args.Error(1)
}
