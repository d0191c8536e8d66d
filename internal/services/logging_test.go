package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestContextualLogger_LogResult(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		level    string
		status   string
		followUp string
	}{
		{"success", nil, "INFO", "success", ""},
		{"business rule", NewBusinessRuleError(RuleOptionOfQuestion, "option c does not belong to question q1", map[string]interface{}{"question_id": "q1"}), "WARN", "validation_error", "Business rule violation"},
		{"validation", ValidationErrors{{Field: "minutes", Message: "must be between 0 and 600"}}, "WARN", "validation_error", "Validation failed"},
		{"permission", NewPermissionError("u2", "s1", "view", "session belongs to another user"), "WARN", "unauthorized", "Permission denied"},
		{"conflict", ErrSessionTimedOut, "WARN", "conflict", ""},
		{"upstream", &gateway.APIError{Status: 503, Message: "down"}, "ERROR", "error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewServiceLogger(slog.New(slog.NewJSONHandler(&buf, nil)), LogConfig{Service: "test", Component: "sessions"})

			logger.WithOperation(context.Background(), "toggle_option", "u1").LogResult("s1", tt.err)

			lines := logLines(t, &buf)
			require.NotEmpty(t, lines)
			assert.Equal(t, tt.level, lines[0]["level"])
			assert.Equal(t, tt.status, lines[0]["status"])
			assert.Equal(t, "sessions", lines[0]["component"])
			if tt.followUp == "" {
				assert.Len(t, lines, 1)
				return
			}
			require.Len(t, lines, 2)
			assert.Equal(t, tt.followUp, lines[1]["msg"])
		})
	}
}

func TestServiceLogger_LogBusinessRuleViolation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewServiceLogger(slog.New(slog.NewJSONHandler(&buf, nil)), LogConfig{Service: "test", Component: "sessions"})

	logger.LogBusinessRuleViolation(context.Background(), "set_response", "u1",
		NewBusinessRuleError(RuleOptionOfQuestion, "option z does not belong to question q1", map[string]interface{}{"question_id": "q1"}))

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, RuleOptionOfQuestion, lines[0]["rule"])
	assert.Equal(t, "q1", lines[0]["context_question_id"])
}
