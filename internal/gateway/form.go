package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"
)

// Form assembles a multipart/form-data body. Parts are written in the order
// they were added.
type Form struct {
	parts []formPart
}

type formPart struct {
	name     string
	value    string
	filename string
	content  io.Reader
}

func NewForm() *Form {
	return &Form{}
}

func (f *Form) Field(name, value string) *Form {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

// OptionalField adds the field only when value is non-empty.
func (f *Form) OptionalField(name, value string) *Form {
	if value == "" {
		return f
	}
	return f.Field(name, value)
}

func (f *Form) IntField(name string, value int) *Form {
	return f.Field(name, strconv.Itoa(value))
}

func (f *Form) FloatField(name string, value float64) *Form {
	return f.Field(name, strconv.FormatFloat(value, 'f', -1, 64))
}

// JSONField adds v encoded as a JSON string field.
func (f *Form) JSONField(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode form field %s: %w", name, err)
	}
	f.Field(name, string(data))
	return nil
}

// JoinedField adds values as one comma-separated field.
func (f *Form) JoinedField(name string, values []string) *Form {
	return f.Field(name, strings.Join(values, ","))
}

func (f *Form) File(name, filename string, content io.Reader) *Form {
	f.parts = append(f.parts, formPart{name: name, filename: filename, content: content})
	return f
}

func (f *Form) Len() int {
	return len(f.parts)
}

func (f *Form) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, p := range f.parts {
		if p.content == nil {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", fmt.Errorf("failed to write form field %s: %w", p.name, err)
			}
			continue
		}
		part, err := w.CreateFormFile(p.name, p.filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %s: %w", p.name, err)
		}
		if _, err := io.Copy(part, p.content); err != nil {
			return nil, "", fmt.Errorf("failed to copy form file %s: %w", p.filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

// Query builds URL query parameters, skipping unset values.
type Query struct {
	values url.Values
}

func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

func (q *Query) Set(key, value string) *Query {
	if value != "" {
		q.values.Set(key, value)
	}
	return q
}

func (q *Query) Add(key string, values ...string) *Query {
	for _, v := range values {
		if v != "" {
			q.values.Add(key, v)
		}
	}
	return q
}

func (q *Query) Int(key string, value *int) *Query {
	if value != nil {
		q.values.Set(key, strconv.Itoa(*value))
	}
	return q
}

func (q *Query) Float(key string, value *float64) *Query {
	if value != nil {
		q.values.Set(key, strconv.FormatFloat(*value, 'f', -1, 64))
	}
	return q
}

func (q *Query) Values() url.Values {
	if q == nil {
		return nil
	}
	return q.values
}
