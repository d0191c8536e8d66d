package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

// TestInfo serves the public test overview pages.
type TestInfo struct {
	client *gateway.Client
}

func NewTestInfo(client *gateway.Client) *TestInfo {
	return &TestInfo{client: client}
}

func (t *TestInfo) Get(ctx context.Context, testID string) (*models.PracticeTestInfo, error) {
	var out models.PracticeTestInfo
	if _, err := t.client.Get(ctx, "/test-info/"+url.PathEscape(testID), nil, &out); err != nil {
		return nil, fmt.Errorf("get test info %s: %w", testID, err)
	}
	return &out, nil
}

// List returns the raw listing; its shape is not fixed by the backend.
func (t *TestInfo) List(ctx context.Context) (json.RawMessage, error) {
	env, err := t.client.Get(ctx, "/test-info", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list test info: %w", err)
	}
	return env.Data, nil
}
