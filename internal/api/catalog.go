package api

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

// SearchPage is a paged search over a named catalog.
type SearchPage struct {
	Search string `form:"search"`
	Pageable
}

// query sends sort and direction as separate parameters, which is what the
// category and type endpoints expect.
func (s SearchPage) query() *gateway.Query {
	q := gateway.NewQuery()
	setInt(q, "page", s.Page, 0)
	setInt(q, "size", s.Size, 10)
	sort, dir := s.Sort, s.Direction
	if sort == "" {
		sort = "name"
	}
	if dir == "" {
		dir = Asc
	}
	return q.Set("sort", sort).Set("direction", string(dir)).Set("search", s.Search)
}

type QuestionCategories struct {
	res resource[models.QuestionCategory]
}

func NewQuestionCategories(client *gateway.Client) *QuestionCategories {
	return &QuestionCategories{res: resource[models.QuestionCategory]{client: client, base: "/question-categories"}}
}

func (c *QuestionCategories) List(ctx context.Context, p SearchPage) (*models.Page[models.QuestionCategory], error) {
	return c.res.list(ctx, p.query())
}

func (c *QuestionCategories) Get(ctx context.Context, id string) (*models.QuestionCategory, error) {
	return c.res.get(ctx, id)
}

func (c *QuestionCategories) Create(ctx context.Context, in models.QuestionCategoryRequest) (*models.QuestionCategory, error) {
	return c.res.create(ctx, in)
}

func (c *QuestionCategories) Update(ctx context.Context, id string, in models.QuestionCategoryRequest) (*models.QuestionCategory, error) {
	return c.res.update(ctx, id, in)
}

func (c *QuestionCategories) Delete(ctx context.Context, id string) error {
	return c.res.delete(ctx, id)
}

type QuestionTypes struct {
	res resource[models.QuestionType]
}

func NewQuestionTypes(client *gateway.Client) *QuestionTypes {
	return &QuestionTypes{res: resource[models.QuestionType]{client: client, base: "/question-types"}}
}

func (t *QuestionTypes) List(ctx context.Context, p SearchPage) (*models.Page[models.QuestionType], error) {
	return t.res.list(ctx, p.query())
}

func (t *QuestionTypes) Get(ctx context.Context, id string) (*models.QuestionType, error) {
	return t.res.get(ctx, id)
}

func (t *QuestionTypes) Create(ctx context.Context, in models.QuestionType) (*models.QuestionType, error) {
	in.ID = ""
	return t.res.create(ctx, in)
}

func (t *QuestionTypes) Update(ctx context.Context, id string, in models.QuestionType) (*models.QuestionType, error) {
	return t.res.update(ctx, id, in)
}

func (t *QuestionTypes) Delete(ctx context.Context, id string) error {
	return t.res.delete(ctx, id)
}

type Parts struct {
	res resource[models.Part]
}

func NewParts(client *gateway.Client) *Parts {
	return &Parts{res: resource[models.Part]{client: client, base: "/parts"}}
}

// List leaves unset paging to the backend.
func (p *Parts) List(ctx context.Context, search string, pageable Pageable) (*models.Page[models.Part], error) {
	q := pageable.apply(gateway.NewQuery().Set("search", search), -1, -1, "")
	return p.res.list(ctx, q)
}

func (p *Parts) Get(ctx context.Context, id string) (*models.Part, error) {
	return p.res.get(ctx, id)
}

func (p *Parts) Create(ctx context.Context, in models.Part) (*models.Part, error) {
	in.ID = ""
	return p.res.create(ctx, in)
}

func (p *Parts) Update(ctx context.Context, id string, in models.Part) (*models.Part, error) {
	return p.res.update(ctx, id, in)
}

func (p *Parts) Delete(ctx context.Context, id string) error {
	return p.res.delete(ctx, id)
}

type Skills struct {
	res resource[models.Skill]
}

func NewSkills(client *gateway.Client) *Skills {
	return &Skills{res: resource[models.Skill]{client: client, base: "/skills"}}
}

func (s *Skills) List(ctx context.Context) ([]models.Skill, error) {
	var out []models.Skill
	if _, err := s.res.client.Get(ctx, s.res.base, nil, &out); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return out, nil
}

func (s *Skills) Get(ctx context.Context, id string) (*models.Skill, error) {
	return s.res.get(ctx, id)
}

func (s *Skills) ByCode(ctx context.Context, code string) (*models.Skill, error) {
	var out models.Skill
	if _, err := s.res.client.Get(ctx, s.res.path("code", code), nil, &out); err != nil {
		return nil, fmt.Errorf("get skill by code %s: %w", code, err)
	}
	return &out, nil
}

func (s *Skills) Create(ctx context.Context, in models.Skill) (*models.Skill, error) {
	in.ID = ""
	return s.res.create(ctx, in)
}

func (s *Skills) Update(ctx context.Context, id string, in models.Skill) (*models.Skill, error) {
	return s.res.update(ctx, id, in)
}

func (s *Skills) Delete(ctx context.Context, id string) error {
	return s.res.delete(ctx, id)
}

type TestCategories struct {
	res resource[models.TestCategory]
}

func NewTestCategories(client *gateway.Client) *TestCategories {
	return &TestCategories{res: resource[models.TestCategory]{client: client, base: "/test-categories"}}
}

func (c *TestCategories) List(ctx context.Context) ([]models.TestCategory, error) {
	var out []models.TestCategory
	if _, err := c.res.client.Get(ctx, c.res.base, nil, &out); err != nil {
		return nil, fmt.Errorf("list test categories: %w", err)
	}
	return out, nil
}

func (c *TestCategories) Get(ctx context.Context, id string) (*models.TestCategory, error) {
	return c.res.get(ctx, id)
}

func (c *TestCategories) Create(ctx context.Context, in models.TestCategory) (*models.TestCategory, error) {
	in.ID = ""
	return c.res.create(ctx, in)
}

func (c *TestCategories) Update(ctx context.Context, id string, in models.TestCategory) (*models.TestCategory, error) {
	return c.res.update(ctx, id, in)
}

func (c *TestCategories) Delete(ctx context.Context, id string) error {
	return c.res.delete(ctx, id)
}

func (c *TestCategories) CodeExists(ctx context.Context, code string) (bool, error) {
	return c.exists(ctx, "code", code)
}

func (c *TestCategories) NameExists(ctx context.Context, name string) (bool, error) {
	return c.exists(ctx, "name", name)
}

func (c *TestCategories) exists(ctx context.Context, field, value string) (bool, error) {
	var ok bool
	if _, err := c.res.client.Get(ctx, c.res.path("exists", field, value), nil, &ok); err != nil {
		return false, fmt.Errorf("check test category %s %q: %w", field, value, err)
	}
	return ok, nil
}
