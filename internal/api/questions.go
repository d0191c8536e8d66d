package api

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

type QuestionFilter struct {
	QuestionTypeID string   `form:"questionTypeId"`
	CategoryID     string   `form:"categoryId"`
	MinScore       *float64 `form:"minScore"`
	MaxScore       *float64 `form:"maxScore"`
	ClipNumber     *int     `form:"clipNumber"`
	Prompt         string   `form:"prompt"`
	Pageable
}

func (f QuestionFilter) query() *gateway.Query {
	q := gateway.NewQuery().
		Set("questionTypeId", f.QuestionTypeID).
		Set("categoryId", f.CategoryID).
		Float("minScore", f.MinScore).
		Float("maxScore", f.MaxScore).
		Int("clipNumber", f.ClipNumber).
		Set("prompt", f.Prompt)
	return f.Pageable.apply(q, 0, 10, "id,asc")
}

type OptionInput struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuestionInput is the body of a create or update. DeletedFileIDs only
// applies to updates.
type QuestionInput struct {
	Prompt         string        `json:"prompt" validate:"required"`
	QuestionTypeID string        `json:"questionTypeId" validate:"required"`
	CategoryID     string        `json:"categoryId" validate:"required"`
	Score          float64       `json:"score" validate:"min=0"`
	Options        []OptionInput `json:"options" validate:"dive"`
	BlankAnswers   []string      `json:"blankAnswers"`
	DeletedFileIDs []string      `json:"deletedFileIds,omitempty"`
	Audios         []Upload      `json:"-"`
}

func (in QuestionInput) form() (*gateway.Form, error) {
	form := gateway.NewForm().
		Field("prompt", in.Prompt).
		Field("questionTypeId", in.QuestionTypeID).
		Field("categoryId", in.CategoryID).
		FloatField("score", in.Score)

	// the backend names the flag "correct"
	options := make([]models.Option, 0, len(in.Options))
	for _, o := range in.Options {
		options = append(options, models.Option{Text: o.Text, Correct: o.IsCorrect})
	}
	if err := form.JSONField("options", options); err != nil {
		return nil, err
	}

	blanks := in.BlankAnswers
	if blanks == nil {
		blanks = []string{}
	}
	if err := form.JSONField("blankAnswers", blanks); err != nil {
		return nil, err
	}

	attachFiles(form, "audios", in.Audios)

	if len(in.DeletedFileIDs) > 0 {
		if err := form.JSONField("deletedAudiosIds", in.DeletedFileIDs); err != nil {
			return nil, err
		}
	}
	return form, nil
}

type Questions struct {
	res resource[models.Question]
}

func NewQuestions(client *gateway.Client) *Questions {
	return &Questions{res: resource[models.Question]{client: client, base: "/questions"}}
}

func (q *Questions) List(ctx context.Context, filter QuestionFilter) (*models.Page[models.Question], error) {
	return q.res.list(ctx, filter.query())
}

func (q *Questions) Get(ctx context.Context, id string) (*models.Question, error) {
	return q.res.get(ctx, id)
}

func (q *Questions) Create(ctx context.Context, in QuestionInput) (*models.Question, error) {
	in.DeletedFileIDs = nil
	form, err := in.form()
	if err != nil {
		return nil, err
	}
	var out models.Question
	if _, err := q.res.client.PostForm(ctx, q.res.base, form, &out); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return &out, nil
}

func (q *Questions) Update(ctx context.Context, id string, in QuestionInput) (*models.Question, error) {
	form, err := in.form()
	if err != nil {
		return nil, err
	}
	var out models.Question
	if _, err := q.res.client.PutForm(ctx, q.res.path(id), form, &out); err != nil {
		return nil, fmt.Errorf("update question %s: %w", id, err)
	}
	return &out, nil
}

func (q *Questions) Delete(ctx context.Context, id string) error {
	return q.res.delete(ctx, id)
}
