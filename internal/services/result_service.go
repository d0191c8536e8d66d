package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

// ResultsAPI is the upstream surface the result service reads from.
type ResultsAPI interface {
	Overall(ctx context.Context, attemptID string) (*models.TestResultOverall, error)
	TestInfo(ctx context.Context, attemptID string) (*models.AttemptTestInfo, error)
	Analysis(ctx context.Context, attemptID string) (*models.AttemptAnalysis, error)
	Answers(ctx context.Context, attemptID string) (*models.AnswerResult, error)
	Latest(ctx context.Context, userID string, limit int, timezone string) ([]models.TestAttemptWithName, error)
}

const answersSheet = "Answers"

var answerHeaders = []string{
	"Part", "Order", "Categories", "Selected Options", "User Answer", "Correct Options", "Correct",
}

type resultService struct {
	api    ResultsAPI
	logger *slog.Logger

	mu      sync.Mutex
	views   map[string]*ResultView
	pending map[string]int
}

func NewResultService(api ResultsAPI, logger *slog.Logger) ResultService {
	return &resultService{
		api:     api,
		logger:  logger,
		views:   make(map[string]*ResultView),
		pending: make(map[string]int),
	}
}

// ===== SINGLE VIEWS =====

func (s *resultService) Overall(ctx context.Context, attemptID string) (*models.TestResultOverall, error) {
	done := s.begin(attemptID)
	overall, err := s.api.Overall(ctx, attemptID)
	done(func(v *ResultView) { v.Overall = overall }, err)
	return overall, err
}

func (s *resultService) TestInfo(ctx context.Context, attemptID string) (*models.AttemptTestInfo, error) {
	done := s.begin(attemptID)
	info, err := s.api.TestInfo(ctx, attemptID)
	done(func(v *ResultView) { v.TestInfo = info }, err)
	return info, err
}

func (s *resultService) Analysis(ctx context.Context, attemptID string) (*models.AttemptAnalysis, error) {
	done := s.begin(attemptID)
	analysis, err := s.api.Analysis(ctx, attemptID)
	done(func(v *ResultView) { v.Analysis = analysis }, err)
	return analysis, err
}

func (s *resultService) Answers(ctx context.Context, attemptID string) (*models.AnswerResult, error) {
	done := s.begin(attemptID)
	answers, err := s.api.Answers(ctx, attemptID)
	done(func(v *ResultView) { v.Answers = answers }, err)
	return answers, err
}

// Load fetches all four views concurrently. Views that succeed are kept even
// when another one fails, so a failure does not cancel its siblings.
func (s *resultService) Load(ctx context.Context, attemptID string) (*ResultView, error) {
	// Hold the view in loading state until every fetch below has committed.
	done := s.begin(attemptID)

	var g errgroup.Group
	g.Go(func() error { _, err := s.Overall(ctx, attemptID); return err })
	g.Go(func() error { _, err := s.TestInfo(ctx, attemptID); return err })
	g.Go(func() error { _, err := s.Analysis(ctx, attemptID); return err })
	g.Go(func() error { _, err := s.Answers(ctx, attemptID); return err })

	err := g.Wait()
	done(func(*ResultView) {}, nil)
	view, _ := s.View(attemptID)
	if err != nil {
		s.logger.Warn("Failed to load attempt results", "attempt_id", attemptID, "error", err)
		return view, fmt.Errorf("failed to load results for attempt %s: %w", attemptID, err)
	}
	return view, nil
}

// View returns a copy of the stored view.
func (s *resultService) View(attemptID string) (*ResultView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[attemptID]
	if !ok {
		return nil, false
	}
	c := *v
	return &c, true
}

func (s *resultService) Reset(attemptID string) {
	s.mu.Lock()
	delete(s.views, attemptID)
	delete(s.pending, attemptID)
	s.mu.Unlock()
}

func (s *resultService) Latest(ctx context.Context, userID string, limit int, timezone string) ([]models.TestAttemptWithName, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	attempts, err := s.api.Latest(ctx, userID, limit, timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest attempts: %w", err)
	}
	return attempts, nil
}

// begin marks the view loading and returns the commit func for the fetch.
// Loading stays set while any fetch for the attempt is in flight. The first
// error of a batch is the one kept.
func (s *resultService) begin(attemptID string) func(apply func(*ResultView), err error) {
	s.mu.Lock()
	v := s.viewLocked(attemptID)
	if s.pending[attemptID] == 0 {
		v.Error = ""
	}
	s.pending[attemptID]++
	v.Loading = true
	s.mu.Unlock()

	return func(apply func(*ResultView), err error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		v := s.viewLocked(attemptID)
		if s.pending[attemptID]--; s.pending[attemptID] <= 0 {
			delete(s.pending, attemptID)
			v.Loading = false
		}
		if err != nil {
			if v.Error == "" {
				v.Error = err.Error()
			}
			return
		}
		apply(v)
		v.FetchedAt = time.Now().UTC()
	}
}

func (s *resultService) viewLocked(attemptID string) *ResultView {
	v, ok := s.views[attemptID]
	if !ok {
		v = &ResultView{AttemptID: attemptID}
		s.views[attemptID] = v
	}
	return v
}

// ===== EXPORT =====

// ExportAnswers renders the attempt's answers as an xlsx workbook with one
// row per question.
func (s *resultService) ExportAnswers(ctx context.Context, attemptID string) ([]byte, error) {
	answers, err := s.Answers(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(answersSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for i, header := range answerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(answersSheet, cell, header)
	}

	parts := answers.Parts
	if len(parts) == 0 {
		parts = []models.PartAnswers{{Questions: answers.Overall}}
	}

	row := 2
	for _, part := range parts {
		for _, q := range part.Questions {
			for col, value := range answerRow(part.PartName, q) {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(answersSheet, cell, value)
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func answerRow(partName string, q models.QuestionResult) []interface{} {
	var selected, correct []string
	for _, o := range q.Options {
		if o.Selected {
			selected = append(selected, o.Text)
		}
		if o.IsCorrect {
			correct = append(correct, o.Text)
		}
	}
	for _, o := range q.CorrectOptions {
		if !slices.Contains(correct, o.Text) {
			correct = append(correct, o.Text)
		}
	}
	correct = append(correct, q.CorrectAnswers...)

	userAnswer := ""
	if q.UserAnswer != nil {
		userAnswer = *q.UserAnswer
	}
	verdict := "skipped"
	if q.IsCorrect != nil {
		verdict = "no"
		if *q.IsCorrect {
			verdict = "yes"
		}
	}

	return []interface{}{
		partName,
		q.Order,
		strings.Join(q.QuestionCategories, ", "),
		strings.Join(selected, ", "),
		userAnswer,
		strings.Join(correct, ", "),
		verdict,
	}
}
