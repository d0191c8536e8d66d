// Package api holds one typed module per upstream resource. Modules only map
// requests and responses; transport, auth and error normalization live in
// the gateway client.
package api

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Pageable is the paging and sorting part of a list request.
type Pageable struct {
	Page      *int      `form:"page" json:"page,omitempty" validate:"omitempty,min=0"`
	Size      *int      `form:"size" json:"size,omitempty" validate:"omitempty,min=1,max=100"`
	Sort      string    `form:"sort" json:"sort,omitempty"`
	Direction Direction `form:"direction" json:"direction,omitempty" validate:"omitempty,sort_direction"`
}

// SortParam renders the sort as "field" or "field,desc". An empty sort
// falls back to def.
func (p Pageable) SortParam(def string) string {
	if p.Sort == "" {
		return def
	}
	if p.Direction == Desc {
		return p.Sort + ",desc"
	}
	return p.Sort
}

// apply writes page, size and sort with the given defaults. A negative
// default leaves the parameter out when unset.
func (p Pageable) apply(q *gateway.Query, page, size int, sort string) *gateway.Query {
	setInt(q, "page", p.Page, page)
	setInt(q, "size", p.Size, size)
	return q.Set("sort", p.SortParam(sort))
}

func setInt(q *gateway.Query, key string, v *int, def int) {
	switch {
	case v != nil:
		q.Int(key, v)
	case def >= 0:
		q.Int(key, &def)
	}
}

// Upload is a file to send in a multipart body.
type Upload struct {
	Filename string
	Content  io.Reader
}

func attachFiles(form *gateway.Form, field string, files []Upload) {
	for _, f := range files {
		if f.Content == nil {
			continue
		}
		form.File(field, f.Filename, f.Content)
	}
}

// resource is the CRUD shape shared by the simple catalog endpoints.
type resource[T any] struct {
	client *gateway.Client
	base   string
}

func (r resource[T]) path(parts ...string) string {
	p := r.base
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

func (r resource[T]) list(ctx context.Context, q *gateway.Query) (*models.Page[T], error) {
	var page models.Page[T]
	if _, err := r.client.Get(ctx, r.base, q, &page); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.base, err)
	}
	return &page, nil
}

func (r resource[T]) get(ctx context.Context, id string) (*T, error) {
	var out T
	if _, err := r.client.Get(ctx, r.path(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", r.base, id, err)
	}
	return &out, nil
}

func (r resource[T]) create(ctx context.Context, body any) (*T, error) {
	var out T
	if _, err := r.client.Post(ctx, r.base, nil, body, &out); err != nil {
		return nil, fmt.Errorf("create %s: %w", r.base, err)
	}
	return &out, nil
}

func (r resource[T]) update(ctx context.Context, id string, body any) (*T, error) {
	var out T
	if _, err := r.client.Put(ctx, r.path(id), body, &out); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", r.base, id, err)
	}
	return &out, nil
}

func (r resource[T]) delete(ctx context.Context, id string) error {
	if _, err := r.client.Delete(ctx, r.path(id)); err != nil {
		return fmt.Errorf("delete %s/%s: %w", r.base, id, err)
	}
	return nil
}
