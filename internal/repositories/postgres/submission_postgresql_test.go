package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Submission{}))
	return db
}

func newSubmission(sessionID, userID string, trigger models.SubmissionTrigger, duration int, at time.Time) *models.Submission {
	return &models.Submission{
		SessionID:   sessionID,
		TestID:      "t1",
		UserID:      userID,
		PartIDs:     datatypes.JSON(`["p1"]`),
		Answers:     datatypes.JSON(`[]`),
		Duration:    duration,
		Trigger:     trigger,
		SubmittedAt: at,
	}
}

func TestSubmissionRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSubmissionPostgreSQL(setupDB(t))

	sub := newSubmission("s1", "u1", models.TriggerLearner, 120, time.Now())
	require.NoError(t, repo.Create(ctx, sub))
	require.NotZero(t, sub.ID)

	got, err := repo.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)
	assert.JSONEq(t, `["p1"]`, string(got.PartIDs))

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmissionRepository_StatusUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewSubmissionPostgreSQL(setupDB(t))

	sub := newSubmission("s1", "u1", models.TriggerLearner, 60, time.Now())
	require.NoError(t, repo.Create(ctx, sub))

	require.NoError(t, repo.MarkFailed(ctx, sub.ID, "upstream down"))
	got, err := repo.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, "upstream down", *got.Error)

	require.NoError(t, repo.MarkAccepted(ctx, sub.ID, "a-9"))
	got, err = repo.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionAccepted, got.Status)
	assert.Equal(t, "a-9", got.AttemptID)
	assert.Nil(t, got.Error)

	assert.ErrorIs(t, repo.MarkAccepted(ctx, 999, "x"), ErrSubmissionNotFound)
}

func TestSubmissionRepository_ListAndStats(t *testing.T) {
	ctx := context.Background()
	repo := NewSubmissionPostgreSQL(setupDB(t))
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	subs := []*models.Submission{
		newSubmission("s1", "u1", models.TriggerLearner, 100, base),
		newSubmission("s2", "u1", models.TriggerTimeUp, 300, base.Add(time.Hour)),
		newSubmission("s3", "u2", models.TriggerLearner, 50, base.Add(2*time.Hour)),
	}
	for _, s := range subs {
		require.NoError(t, repo.Create(ctx, s))
	}
	require.NoError(t, repo.MarkAccepted(ctx, subs[0].ID, "a1"))
	require.NoError(t, repo.MarkFailed(ctx, subs[1].ID, "boom"))

	list, total, err := repo.List(ctx, repositories.SubmissionFilters{UserID: "u1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "s2", list[0].SessionID, "newest first by default")

	list, total, err = repo.List(ctx, repositories.SubmissionFilters{SortBy: "duration", SortOrder: "asc", Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 1)
	assert.Equal(t, "s1", list[0].SessionID)

	bySession, err := repo.GetBySession(ctx, "s3")
	require.NoError(t, err)
	assert.Len(t, bySession, 1)

	stats, err := repo.GetUserStats(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Accepted)
	assert.EqualValues(t, 1, stats.Failed)
	assert.EqualValues(t, 1, stats.TimedOut)
	assert.InDelta(t, 200, stats.AverageDuration, 0.001)
}
