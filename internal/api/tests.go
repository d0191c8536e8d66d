package api

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

// Tests manages test definitions. Create and update send the definition as
// a JSON "testData" field next to the uploaded files.
type Tests struct {
	res resource[models.Test]
}

func NewTests(client *gateway.Client) *Tests {
	return &Tests{res: resource[models.Test]{client: client, base: "/tests"}}
}

func testForm(data models.TestData, files []Upload) (*gateway.Form, error) {
	form := gateway.NewForm()
	if err := form.JSONField("testData", data); err != nil {
		return nil, err
	}
	attachFiles(form, "files", files)
	return form, nil
}

func (t *Tests) Create(ctx context.Context, data models.TestData, files []Upload) (*models.Test, error) {
	form, err := testForm(data, files)
	if err != nil {
		return nil, err
	}
	var out models.Test
	if _, err := t.res.client.PostForm(ctx, t.res.base, form, &out); err != nil {
		return nil, fmt.Errorf("create test: %w", err)
	}
	return &out, nil
}

func (t *Tests) Update(ctx context.Context, id string, data models.TestData, files []Upload) (*models.Test, error) {
	data.ID = id
	form, err := testForm(data, files)
	if err != nil {
		return nil, err
	}
	var out models.Test
	if _, err := t.res.client.PutForm(ctx, t.res.path(id), form, &out); err != nil {
		return nil, fmt.Errorf("update test %s: %w", id, err)
	}
	return &out, nil
}

func (t *Tests) Get(ctx context.Context, id string) (*models.Test, error) {
	return t.res.get(ctx, id)
}

func (t *Tests) Delete(ctx context.Context, id string) error {
	return t.res.delete(ctx, id)
}

// ListSimple pages through the lightweight test listing. Unset paging is
// left to the backend defaults.
func (t *Tests) ListSimple(ctx context.Context, page, size *int, search string) (*models.Page[models.TestSimple], error) {
	q := gateway.NewQuery().Int("page", page).Int("size", size).Set("search", search)

	var out models.Page[models.TestSimple]
	if _, err := t.res.client.Get(ctx, t.res.path("simple"), q, &out); err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	return &out, nil
}
