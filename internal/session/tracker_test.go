package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

type stubFetcher struct {
	snapshot *models.TestSnapshot
	err      error
	calls    int
}

func (f *stubFetcher) FetchTestContent(ctx context.Context, testID string, partIDs []string) (*models.TestSnapshot, error) {
	f.calls++
	return f.snapshot, f.err
}

// blockingFetcher releases each call only when told to, so tests can control
// the order in which overlapping loads resolve.
type blockingFetcher struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	results map[string]*models.TestSnapshot
}

func newBlockingFetcher() *blockingFetcher {
	return &blockingFetcher{
		gates:   make(map[string]chan struct{}),
		results: make(map[string]*models.TestSnapshot),
	}
}

func (f *blockingFetcher) prepare(testID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gates[testID] = make(chan struct{})
	f.results[testID] = &models.TestSnapshot{TestID: testID}
}

func (f *blockingFetcher) release(testID string) {
	f.mu.Lock()
	gate := f.gates[testID]
	f.mu.Unlock()
	close(gate)
}

func (f *blockingFetcher) FetchTestContent(ctx context.Context, testID string, partIDs []string) (*models.TestSnapshot, error) {
	f.mu.Lock()
	gate := f.gates[testID]
	result := f.results[testID]
	f.mu.Unlock()
	<-gate
	return result, nil
}

func sampleSnapshot() *models.TestSnapshot {
	return &models.TestSnapshot{
		TestID:   "t1",
		TestName: "Listening practice",
		Parts: []models.PracticePart{
			{
				ID:   "p1",
				Name: "Part 1",
				QuestionsAndQuestionSets: []models.PracticeQuestionOrSetItem{
					{ID: "i1", Order: 1, Question: &models.PracticeQuestion{ID: "q1"}},
					{ID: "i2", Order: 2, QuestionSet: &models.PracticeQuestionSet{
						ID: "s1",
						Questions: []models.PracticeQuestion{
							{ID: "q2"},
							{ID: "q3"},
						},
					}},
				},
			},
		},
	}
}

func TestTracker_ToggleSelectedOption(t *testing.T) {
	t.Run("selecting twice keeps one entry", func(t *testing.T) {
		tr := NewTracker(WithScheduler(NewManualScheduler()))

		tr.ToggleSelectedOption("q1", "A", true)
		r := tr.ToggleSelectedOption("q1", "A", true)

		assert.Equal(t, []string{"A"}, r.SelectedOptionIDs)
		assert.True(t, tr.IsOptionSelected("q1", "A"))
	})

	t.Run("net effect of a sequence", func(t *testing.T) {
		tr := NewTracker(WithScheduler(NewManualScheduler()))

		tr.ToggleSelectedOption("q1", "A", true)
		tr.ToggleSelectedOption("q1", "B", true)
		tr.ToggleSelectedOption("q1", "A", false)
		tr.ToggleSelectedOption("q1", "A", false)
		tr.ToggleSelectedOption("q1", "C", true)

		r, ok := tr.Response("q1")
		require.True(t, ok)
		assert.Equal(t, []string{"B", "C"}, r.SelectedOptionIDs)
		assert.False(t, tr.IsOptionSelected("q1", "A"))
	})

	t.Run("deselect creates an empty response", func(t *testing.T) {
		tr := NewTracker(WithScheduler(NewManualScheduler()))

		tr.ToggleSelectedOption("q9", "A", false)

		_, ok := tr.Response("q9")
		assert.True(t, ok)
		assert.False(t, tr.IsAnswered("q9"))
	})

	t.Run("returned copy does not alias tracker state", func(t *testing.T) {
		tr := NewTracker(WithScheduler(NewManualScheduler()))

		r := tr.ToggleSelectedOption("q1", "A", true)
		r.SelectedOptionIDs[0] = "Z"

		assert.True(t, tr.IsOptionSelected("q1", "A"))
	})
}

func TestTracker_SetResponse(t *testing.T) {
	t.Run("merge keeps untouched fields", func(t *testing.T) {
		tr := NewTracker(WithScheduler(NewManualScheduler()))

		tr.SetResponse("q1", models.ResponseUpdate{SelectedOptionIDs: []string{"A", "A", "B"}})
		r := tr.SetResponse("q1", models.ResponseUpdate{FreeTextAnswer: strPtr("note")})

		assert.Equal(t, []string{"A", "B"}, r.SelectedOptionIDs)
		require.NotNil(t, r.FreeTextAnswer)
		assert.Equal(t, "note", *r.FreeTextAnswer)
	})

	t.Run("replace clears omitted fields", func(t *testing.T) {
		tr := NewTracker(WithScheduler(NewManualScheduler()))

		tr.SetResponse("q1", models.ResponseUpdate{SelectedOptionIDs: []string{"A"}, FreeTextAnswer: strPtr("x")})
		r := tr.SetResponse("q1", models.ResponseUpdate{FreeTextAnswer: strPtr("y"), Replace: true})

		assert.Empty(t, r.SelectedOptionIDs)
		assert.Equal(t, "y", *r.FreeTextAnswer)
		assert.Equal(t, 1, tr.ResponseCount())
	})

	t.Run("any question id is accepted", func(t *testing.T) {
		tr := NewTracker(WithScheduler(NewManualScheduler()))

		tr.SetResponse("not-in-test", models.ResponseUpdate{SelectedOptionIDs: []string{"A"}})

		assert.True(t, tr.IsAnswered("not-in-test"))
	})
}

func TestTracker_IsAnswered(t *testing.T) {
	tr := NewTracker(WithScheduler(NewManualScheduler()))

	assert.False(t, tr.IsAnswered("missing"))

	tr.SetResponse("empty", models.ResponseUpdate{SelectedOptionIDs: []string{}, FreeTextAnswer: strPtr("")})
	assert.False(t, tr.IsAnswered("empty"))

	tr.SetResponse("text", models.ResponseUpdate{FreeTextAnswer: strPtr("hello")})
	assert.True(t, tr.IsAnswered("text"))

	tr.SetResponse("choice", models.ResponseUpdate{SelectedOptionIDs: []string{"A"}})
	assert.True(t, tr.IsAnswered("choice"))
}

func TestTracker_ClearResponseScenario(t *testing.T) {
	tr := NewTracker(WithScheduler(NewManualScheduler()))

	tr.SetResponse("q1", models.ResponseUpdate{SelectedOptionIDs: []string{"A"}})
	tr.SetResponse("q2", models.ResponseUpdate{FreeTextAnswer: strPtr("hello")})
	tr.ClearResponse("q1")

	assert.False(t, tr.IsAnswered("q1"))
	assert.True(t, tr.IsAnswered("q2"))

	answers := tr.Answers()
	require.Len(t, answers, 1)
	assert.Equal(t, "q2", answers[0].QuestionID)
	require.NotNil(t, answers[0].AnswerText)
	assert.Equal(t, "hello", *answers[0].AnswerText)

	tr.ClearAllResponses()
	assert.Empty(t, tr.Answers())
}

func TestTracker_AnswersFollowSnapshotOrder(t *testing.T) {
	tr := NewTracker(WithScheduler(NewManualScheduler()))
	require.NoError(t, tr.LoadSnapshot(context.Background(), &stubFetcher{snapshot: sampleSnapshot()}, "t1", nil))

	tr.SetResponse("zz", models.ResponseUpdate{SelectedOptionIDs: []string{"A"}})
	tr.SetResponse("q3", models.ResponseUpdate{SelectedOptionIDs: []string{"A"}})
	tr.SetResponse("aa", models.ResponseUpdate{SelectedOptionIDs: []string{"A"}})
	tr.SetResponse("q1", models.ResponseUpdate{SelectedOptionIDs: []string{"B"}})

	var ids []string
	for _, a := range tr.Answers() {
		ids = append(ids, a.QuestionID)
	}
	assert.Equal(t, []string{"q1", "q3", "aa", "zz"}, ids)
}

func TestTracker_Review(t *testing.T) {
	tr := NewTracker(WithScheduler(NewManualScheduler()))

	tr.AddToReview("q3")
	tr.AddToReview("q3")
	tr.RemoveFromReview("q3")
	assert.False(t, tr.IsInReview("q3"))

	tr.AddToReview("q3")
	assert.True(t, tr.IsInReview("q3"))
	assert.False(t, tr.IsAnswered("q3"), "flagging does not create a response")

	tr.AddToReview("q1")
	assert.Equal(t, []string{"q1", "q3"}, tr.ReviewList())

	tr.ClearReview()
	assert.Empty(t, tr.ReviewList())
}

func TestTracker_LoadSnapshot(t *testing.T) {
	t.Run("success installs snapshot", func(t *testing.T) {
		tr := NewTracker(WithScheduler(NewManualScheduler()))

		err := tr.LoadSnapshot(context.Background(), &stubFetcher{snapshot: sampleSnapshot()}, "t1", []string{"p1"})

		require.NoError(t, err)
		assert.Equal(t, "t1", tr.Snapshot().TestID)
		assert.False(t, tr.Loading())
		assert.Empty(t, tr.Err())
	})

	t.Run("failure keeps prior snapshot", func(t *testing.T) {
		tr := NewTracker(WithScheduler(NewManualScheduler()))
		require.NoError(t, tr.LoadSnapshot(context.Background(), &stubFetcher{snapshot: sampleSnapshot()}, "t1", nil))

		err := tr.LoadSnapshot(context.Background(), &stubFetcher{err: errors.New("upstream down")}, "t1", nil)

		assert.EqualError(t, err, "upstream down")
		assert.Equal(t, "upstream down", tr.Err())
		assert.Equal(t, "t1", tr.Snapshot().TestID)
		assert.False(t, tr.Loading())
	})

	t.Run("nil snapshot is an error", func(t *testing.T) {
		tr := NewTracker(WithScheduler(NewManualScheduler()))

		err := tr.LoadSnapshot(context.Background(), &stubFetcher{}, "t1", nil)

		assert.ErrorIs(t, err, ErrEmptySnapshot)
		assert.Nil(t, tr.Snapshot())
	})

	t.Run("older load finishing last is discarded", func(t *testing.T) {
		tr := NewTracker(WithScheduler(NewManualScheduler()))
		f := newBlockingFetcher()
		f.prepare("old")
		f.prepare("new")

		oldDone := make(chan error, 1)
		go func() { oldDone <- tr.LoadSnapshot(context.Background(), f, "old", nil) }()
		require.Eventually(t, tr.Loading, timeout, poll)

		newDone := make(chan error, 1)
		go func() { newDone <- tr.LoadSnapshot(context.Background(), f, "new", nil) }()

		// Give the second load time to register before resolving anything.
		require.Eventually(t, func() bool {
			tr.mu.RLock()
			defer tr.mu.RUnlock()
			return tr.fetchSeq == 2
		}, timeout, poll)

		f.release("new")
		require.NoError(t, <-newDone)
		f.release("old")
		assert.ErrorIs(t, <-oldDone, ErrFetchSuperseded)

		assert.Equal(t, "new", tr.Snapshot().TestID)
	})
}

func TestTracker_Progress(t *testing.T) {
	tr := NewTracker(WithScheduler(NewManualScheduler()))
	require.NoError(t, tr.LoadSnapshot(context.Background(), &stubFetcher{snapshot: sampleSnapshot()}, "t1", nil))

	tr.SetResponse("q1", models.ResponseUpdate{SelectedOptionIDs: []string{"A"}})
	tr.ToggleSelectedOption("q2", "B", false)
	tr.AddToReview("q3")

	assert.Equal(t, Progress{Total: 3, Answered: 1, Unanswered: 2, Flagged: 1}, tr.Progress())
}

func TestTracker_ResetState(t *testing.T) {
	sched := NewManualScheduler()
	tr := NewTracker(WithScheduler(sched))
	require.NoError(t, tr.LoadSnapshot(context.Background(), &stubFetcher{snapshot: sampleSnapshot()}, "t1", nil))
	tr.SetResponse("q1", models.ResponseUpdate{SelectedOptionIDs: []string{"A"}})
	tr.AddToReview("q2")
	tr.Timer().SetTimeLimit(5)
	tr.Timer().Start()
	sched.Advance(10)

	tr.ResetState()

	assert.Nil(t, tr.Snapshot())
	assert.Zero(t, tr.ResponseCount())
	assert.Empty(t, tr.ReviewList())
	assert.Empty(t, tr.Err())
	assert.Equal(t, TimerSnapshot{State: TimerStopped}, tr.Timer().Snapshot())
	assert.Zero(t, sched.Active())
}
