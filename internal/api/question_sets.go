package api

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

type QuestionSetFilter struct {
	Title        string   `form:"title"`
	Search       string   `form:"search"`
	MinOrder     *int     `form:"minOrder"`
	MaxOrder     *int     `form:"maxOrder"`
	MinQuestions *int     `form:"minQuestions"`
	MaxQuestions *int     `form:"maxQuestions"`
	MinScore     *float64 `form:"minScore"`
	MaxScore     *float64 `form:"maxScore"`
	Pageable
}

func (f QuestionSetFilter) query() *gateway.Query {
	q := gateway.NewQuery().
		Set("title", f.Title).
		Set("search", f.Search).
		Int("minOrder", f.MinOrder).
		Int("maxOrder", f.MaxOrder).
		Int("minQuestions", f.MinQuestions).
		Int("maxQuestions", f.MaxQuestions).
		Float("minScore", f.MinScore).
		Float("maxScore", f.MaxScore)
	return f.Pageable.apply(q, 0, 10, "order,asc")
}

// QuestionSetInput is used for both create and update. On update, empty
// fields are left out so the backend keeps them.
type QuestionSetInput struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	QuestionIDs []string `json:"questionIds"`
	Order       *int     `json:"order,omitempty"`
	AudioFiles  []Upload `json:"-"`
}

func (in QuestionSetInput) form() *gateway.Form {
	form := gateway.NewForm().OptionalField("title", in.Title)
	if in.Description != nil {
		form.Field("description", *in.Description)
	}
	if len(in.QuestionIDs) > 0 {
		form.JoinedField("questionIds", in.QuestionIDs)
	}
	attachFiles(form, "audioFiles", in.AudioFiles)
	if in.Order != nil {
		form.IntField("order", *in.Order)
	}
	return form
}

type QuestionSets struct {
	res resource[models.QuestionSet]
}

func NewQuestionSets(client *gateway.Client) *QuestionSets {
	return &QuestionSets{res: resource[models.QuestionSet]{client: client, base: "/question-sets"}}
}

func (s *QuestionSets) List(ctx context.Context, filter QuestionSetFilter) (*models.Page[models.QuestionSet], error) {
	return s.res.list(ctx, filter.query())
}

func (s *QuestionSets) Get(ctx context.Context, id string) (*models.QuestionSet, error) {
	return s.res.get(ctx, id)
}

func (s *QuestionSets) Create(ctx context.Context, in QuestionSetInput) (*models.QuestionSet, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("create question set: title is required")
	}
	form := in.form()
	if len(in.QuestionIDs) == 0 {
		// required by the backend even when empty
		form.Field("questionIds", "")
	}

	var out models.QuestionSet
	if _, err := s.res.client.PostForm(ctx, s.res.base, form, &out); err != nil {
		return nil, fmt.Errorf("create question set: %w", err)
	}
	return &out, nil
}

func (s *QuestionSets) Update(ctx context.Context, id string, in QuestionSetInput) (*models.QuestionSet, error) {
	var out models.QuestionSet
	if _, err := s.res.client.PutForm(ctx, s.res.path(id), in.form(), &out); err != nil {
		return nil, fmt.Errorf("update question set %s: %w", id, err)
	}
	return &out, nil
}

func (s *QuestionSets) Delete(ctx context.Context, id string) error {
	return s.res.delete(ctx, id)
}

func (s *QuestionSets) RemoveFile(ctx context.Context, setID, fileID string) error {
	if _, err := s.res.client.Delete(ctx, s.res.path(setID, "files", fileID)); err != nil {
		return fmt.Errorf("remove file %s from question set %s: %w", fileID, setID, err)
	}
	return nil
}

func (s *QuestionSets) ReorderQuestions(ctx context.Context, setID string, orders []models.ItemOrder) error {
	body := map[string][]models.ItemOrder{"questionOrders": orders}
	if _, err := s.res.client.Put(ctx, s.res.path(setID, "reorder-questions"), body, nil); err != nil {
		return fmt.Errorf("reorder question set %s: %w", setID, err)
	}
	return nil
}
