package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

var (
	// ErrFetchSuperseded is returned by LoadSnapshot when a later load (or a
	// reset) started before this one finished. Its result is discarded.
	ErrFetchSuperseded = errors.New("test content fetch superseded by a newer request")
	ErrEmptySnapshot   = errors.New("no test content received")
)

// SnapshotFetcher loads the content of a test, optionally restricted to parts.
type SnapshotFetcher interface {
	FetchTestContent(ctx context.Context, testID string, partIDs []string) (*models.TestSnapshot, error)
}

// Progress summarises how far the learner is through the loaded test.
type Progress struct {
	Total      int `json:"total"`
	Answered   int `json:"answered"`
	Unanswered int `json:"unanswered"`
	Flagged    int `json:"flagged"`
}

// Tracker holds everything needed to render an in-progress exam and to build
// its submission. Nothing is persisted until the caller submits.
type Tracker struct {
	mu sync.RWMutex

	snapshot  *models.TestSnapshot
	responses map[string]*models.Response
	review    map[string]struct{}

	loading  bool
	err      string
	fetchSeq uint64

	timer *Countdown
}

type Option func(*trackerOptions)

type trackerOptions struct {
	scheduler Scheduler
	interval  time.Duration
}

// WithScheduler overrides the scheduler driving the countdown.
func WithScheduler(s Scheduler) Option {
	return func(o *trackerOptions) { o.scheduler = s }
}

// WithTickInterval overrides the countdown tick interval (one second by default).
func WithTickInterval(d time.Duration) Option {
	return func(o *trackerOptions) { o.interval = d }
}

func NewTracker(opts ...Option) *Tracker {
	o := trackerOptions{interval: time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	return &Tracker{
		responses: make(map[string]*models.Response),
		review:    make(map[string]struct{}),
		timer:     NewCountdown(o.scheduler, o.interval),
	}
}

// Timer exposes the session countdown.
func (t *Tracker) Timer() *Countdown {
	return t.timer
}

// ===== TEST CONTENT =====

// LoadSnapshot fetches test content and installs it. On failure the error
// message is recorded and any previously loaded snapshot is kept. Only the
// most recently issued load may commit.
func (t *Tracker) LoadSnapshot(ctx context.Context, fetcher SnapshotFetcher, testID string, partIDs []string) error {
	t.mu.Lock()
	t.fetchSeq++
	seq := t.fetchSeq
	t.loading = true
	t.err = ""
	t.mu.Unlock()

	snapshot, err := fetcher.FetchTestContent(ctx, testID, partIDs)

	t.mu.Lock()
	defer t.mu.Unlock()

	if seq != t.fetchSeq {
		return ErrFetchSuperseded
	}
	t.loading = false

	if err != nil {
		t.err = err.Error()
		return err
	}
	if snapshot == nil {
		t.err = ErrEmptySnapshot.Error()
		return ErrEmptySnapshot
	}
	t.snapshot = snapshot
	return nil
}

func (t *Tracker) Snapshot() *models.TestSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot
}

func (t *Tracker) Loading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loading
}

// Err returns the message of the last failed load, or "".
func (t *Tracker) Err() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// ===== RESPONSES =====

// SetResponse inserts or updates the response for questionID and returns a
// copy of the result.
func (t *Tracker) SetResponse(questionID string, update models.ResponseUpdate) *models.Response {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.responses[questionID]
	next := &models.Response{QuestionID: questionID}
	if current != nil && !update.Replace {
		next = current.Clone()
	}

	if update.SelectedOptionIDs != nil || update.Replace {
		next.SelectedOptionIDs = dedupe(update.SelectedOptionIDs)
	}
	if update.FreeTextAnswer != nil || update.Replace {
		next.FreeTextAnswer = nil
		if update.FreeTextAnswer != nil {
			text := *update.FreeTextAnswer
			next.FreeTextAnswer = &text
		}
	}

	t.responses[questionID] = next
	return next.Clone()
}

// ToggleSelectedOption adds or removes optionID from the question's
// selection. Repeating the same call has no further effect.
func (t *Tracker) ToggleSelectedOption(questionID, optionID string, selected bool) *models.Response {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.responses[questionID]
	if !ok {
		r = &models.Response{QuestionID: questionID, SelectedOptionIDs: []string{}}
		t.responses[questionID] = r
	}

	has := r.HasOption(optionID)
	switch {
	case selected && !has:
		r.SelectedOptionIDs = append(r.SelectedOptionIDs, optionID)
	case !selected && has:
		kept := r.SelectedOptionIDs[:0]
		for _, id := range r.SelectedOptionIDs {
			if id != optionID {
				kept = append(kept, id)
			}
		}
		r.SelectedOptionIDs = kept
	}
	return r.Clone()
}

func (t *Tracker) IsOptionSelected(questionID, optionID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.responses[questionID].HasOption(optionID)
}

// Response returns a copy of the response for questionID.
func (t *Tracker) Response(questionID string) (*models.Response, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.responses[questionID]
	return r.Clone(), ok
}

func (t *Tracker) ClearResponse(questionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.responses, questionID)
}

func (t *Tracker) ClearAllResponses() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responses = make(map[string]*models.Response)
}

// IsAnswered is true iff a response exists with a selection or non-empty text.
func (t *Tracker) IsAnswered(questionID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.responses[questionID].Answered()
}

func (t *Tracker) ResponseCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.responses)
}

// Answers materialises every current response for submission, in the
// snapshot's display order; questions unknown to the snapshot follow, by id.
func (t *Tracker) Answers() []models.QuestionAnswer {
	t.mu.RLock()
	defer t.mu.RUnlock()

	order := t.snapshot.QuestionOrder()
	ids := make([]string, 0, len(t.responses))
	for id := range t.responses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		oi, iKnown := order[ids[i]]
		oj, jKnown := order[ids[j]]
		switch {
		case iKnown && jKnown:
			return oi < oj
		case iKnown != jKnown:
			return iKnown
		default:
			return ids[i] < ids[j]
		}
	})

	answers := make([]models.QuestionAnswer, 0, len(ids))
	for _, id := range ids {
		answers = append(answers, t.responses[id].ToQuestionAnswer())
	}
	return answers
}

// ===== REVIEW FLAGS =====

func (t *Tracker) AddToReview(questionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.review[questionID] = struct{}{}
}

func (t *Tracker) RemoveFromReview(questionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.review, questionID)
}

func (t *Tracker) IsInReview(questionID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.review[questionID]
	return ok
}

func (t *Tracker) ClearReview() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.review = make(map[string]struct{})
}

// ReviewList returns the flagged question ids, sorted.
func (t *Tracker) ReviewList() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.review))
	for id := range t.review {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ===== SESSION =====

func (t *Tracker) Progress() Progress {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p := Progress{Flagged: len(t.review)}
	questions := t.snapshot.Questions()
	p.Total = len(questions)
	for _, q := range questions {
		if t.responses[q.Question.ID].Answered() {
			p.Answered++
		}
	}
	p.Unanswered = p.Total - p.Answered
	return p
}

// ResetState discards the snapshot, responses, review flags and timer, and
// invalidates any load still in flight.
func (t *Tracker) ResetState() {
	t.timer.SetTimeLimit(0)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot = nil
	t.responses = make(map[string]*models.Response)
	t.review = make(map[string]struct{})
	t.loading = false
	t.err = ""
	t.fetchSeq++
}

func dedupe(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
