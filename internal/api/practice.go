package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

const practicePath = "/practice-tests"

// Practice covers taking a test: starting an attempt, loading its content
// and submitting answers.
type Practice struct {
	client *gateway.Client
}

func NewPractice(client *gateway.Client) *Practice {
	return &Practice{client: client}
}

func (p *Practice) Start(ctx context.Context, testID, userID string) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	path := practicePath + "/" + url.PathEscape(testID) + "/start"
	if _, err := p.client.Post(ctx, path, gateway.NewQuery().Set("userId", userID), nil, &attempt); err != nil {
		return nil, fmt.Errorf("start practice test %s: %w", testID, err)
	}
	return &attempt, nil
}

func (p *Practice) PartAttempts(ctx context.Context, attemptID string) ([]models.TestPartAttempt, error) {
	var parts []models.TestPartAttempt
	path := practicePath + "/attempts/" + url.PathEscape(attemptID) + "/parts"
	if _, err := p.client.Get(ctx, path, nil, &parts); err != nil {
		return nil, fmt.Errorf("get part attempts %s: %w", attemptID, err)
	}
	return parts, nil
}

func (p *Practice) Results(ctx context.Context, attemptID, userID string) (*models.PracticeTestResult, error) {
	var result models.PracticeTestResult
	path := practicePath + "/attempts/" + url.PathEscape(attemptID) + "/results"
	if _, err := p.client.Get(ctx, path, gateway.NewQuery().Set("userId", userID), &result); err != nil {
		return nil, fmt.Errorf("get practice results %s: %w", attemptID, err)
	}
	return &result, nil
}

func (p *Practice) ByID(ctx context.Context, testID string) (*models.PracticeTest, error) {
	var test models.PracticeTest
	if _, err := p.client.Get(ctx, practicePath+"/"+url.PathEscape(testID), nil, &test); err != nil {
		return nil, fmt.Errorf("get practice test %s: %w", testID, err)
	}
	return &test, nil
}

func (p *Practice) Parts(ctx context.Context, testID string) ([]models.PracticePart, error) {
	var parts []models.PracticePart
	path := practicePath + "/tests/" + url.PathEscape(testID) + "/parts"
	if _, err := p.client.Get(ctx, path, nil, &parts); err != nil {
		return nil, fmt.Errorf("get practice parts %s: %w", testID, err)
	}
	return parts, nil
}

// ByParts loads the content of testID restricted to partIDs; no part ids
// means the whole test.
func (p *Practice) ByParts(ctx context.Context, testID string, partIDs []string) (*models.PracticeTest, error) {
	var test models.PracticeTest
	path := practicePath + "/tests/" + url.PathEscape(testID) + "/practice"
	body := models.PracticeTestRequest{TestID: testID, PartIDs: partIDs}
	if _, err := p.client.Post(ctx, path, nil, body, &test); err != nil {
		return nil, fmt.Errorf("get practice content %s: %w", testID, err)
	}
	return &test, nil
}

// FetchTestContent makes Practice usable as the session snapshot source.
func (p *Practice) FetchTestContent(ctx context.Context, testID string, partIDs []string) (*models.TestSnapshot, error) {
	return p.ByParts(ctx, testID, partIDs)
}

func (p *Practice) Submit(ctx context.Context, req models.SubmitPracticeRequest) (*models.TestAttempt, error) {
	if req.QuestionAnswers == nil {
		req.QuestionAnswers = []models.QuestionAnswer{}
	}
	if req.ListPartID == nil {
		req.ListPartID = []string{}
	}

	var attempt models.TestAttempt
	if _, err := p.client.Post(ctx, practicePath+"/attempts/submit", nil, req, &attempt); err != nil {
		return nil, fmt.Errorf("submit practice test %s: %w", req.TestID, err)
	}
	return &attempt, nil
}
