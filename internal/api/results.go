package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

// Results reads the graded views of a finished attempt.
type Results struct {
	client *gateway.Client
}

func NewResults(client *gateway.Client) *Results {
	return &Results{client: client}
}

func (r *Results) Overall(ctx context.Context, attemptID string) (*models.TestResultOverall, error) {
	var out models.TestResultOverall
	if _, err := r.client.Get(ctx, "/tests/results/overall/"+url.PathEscape(attemptID), nil, &out); err != nil {
		return nil, fmt.Errorf("get overall result %s: %w", attemptID, err)
	}
	return &out, nil
}

func (r *Results) TestInfo(ctx context.Context, attemptID string) (*models.AttemptTestInfo, error) {
	var out models.AttemptTestInfo
	if _, err := r.client.Get(ctx, attemptPath(attemptID, "test-info"), nil, &out); err != nil {
		return nil, fmt.Errorf("get attempt test info %s: %w", attemptID, err)
	}
	return &out, nil
}

func (r *Results) Answers(ctx context.Context, attemptID string) (*models.AnswerResult, error) {
	var out models.AnswerResult
	if _, err := r.client.Get(ctx, attemptPath(attemptID, "answers"), nil, &out); err != nil {
		return nil, fmt.Errorf("get attempt answers %s: %w", attemptID, err)
	}
	return &out, nil
}

func (r *Results) Analysis(ctx context.Context, attemptID string) (*models.AttemptAnalysis, error) {
	var out models.AttemptAnalysis
	if _, err := r.client.Get(ctx, attemptPath(attemptID, "analysis"), nil, &out); err != nil {
		return nil, fmt.Errorf("get attempt analysis %s: %w", attemptID, err)
	}
	return &out, nil
}

// Latest returns the user's most recent attempts. Timezone is optional.
func (r *Results) Latest(ctx context.Context, userID string, limit int, timezone string) ([]models.TestAttemptWithName, error) {
	if limit <= 0 {
		limit = 2
	}
	q := gateway.NewQuery().Set("userId", userID).Int("limit", &limit).Set("timezone", timezone)

	var out []models.TestAttemptWithName
	if _, err := r.client.Post(ctx, "/test-attempts/latest", q, nil, &out); err != nil {
		return nil, fmt.Errorf("get latest attempts for %s: %w", userID, err)
	}
	return out, nil
}

func attemptPath(attemptID, view string) string {
	return "/attempts/" + url.PathEscape(attemptID) + "/" + view
}
