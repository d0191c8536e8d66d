package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/api"})
	require.NoError(t, err)
	return c
}

func TestClient_BearerToken(t *testing.T) {
	t.Run("forwards context token", func(t *testing.T) {
		var auth string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			w.Write([]byte(`{"success":true,"data":null}`))
		})

		_, err := c.Get(WithToken(context.Background(), "abc"), "/tests/1", nil, nil)

		require.NoError(t, err)
		assert.Equal(t, "Bearer abc", auth)
	})

	t.Run("omits header without token", func(t *testing.T) {
		var auth []string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Values("Authorization")
			w.Write([]byte(`{}`))
		})

		_, err := c.Get(context.Background(), "/tests/1", nil, nil)

		require.NoError(t, err)
		assert.Empty(t, auth)
	})

	t.Run("token source error aborts", func(t *testing.T) {
		c, err := New(Config{
			BaseURL: "http://127.0.0.1:1",
			Tokens: TokenFunc(func(ctx context.Context) (string, error) {
				return "", errors.New("expired")
			}),
		})
		require.NoError(t, err)

		_, err = c.Get(context.Background(), "/x", nil, nil)
		assert.ErrorContains(t, err, "expired")
	})
}

func TestClient_EnvelopeNormalization(t *testing.T) {
	t.Run("unwraps success envelope", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tests/42", r.URL.Path)
			w.Write([]byte(`{"success":true,"message":"ok","data":{"id":"42"}}`))
		})

		var out struct {
			ID string `json:"id"`
		}
		env, err := c.Get(context.Background(), "tests/42", nil, &out)

		require.NoError(t, err)
		assert.True(t, env.Success)
		assert.Equal(t, "ok", env.Message)
		assert.Equal(t, "42", out.ID)
	})

	t.Run("wraps bare payload", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"id":"a"},{"id":"b"}]`))
		})

		var out []struct {
			ID string `json:"id"`
		}
		env, err := c.Get(context.Background(), "/parts", nil, &out)

		require.NoError(t, err)
		assert.True(t, env.Success)
		assert.Len(t, out, 2)
	})

	t.Run("success false is an error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false,"message":"Test not published"}`))
		})

		_, err := c.Get(context.Background(), "/tests/1", nil, nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Test not published", apiErr.Message)
		assert.Equal(t, http.StatusOK, apiErr.Status)
	})
}

func TestClient_ErrorNormalization(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"body message", http.StatusBadRequest, `{"message":"title is required","errors":{"title":["required"]}}`, "title is required"},
		{"body without message", http.StatusConflict, `{"data":null}`, "An error occurred"},
		{"unauthorized", http.StatusUnauthorized, ``, "Unauthorized access"},
		{"forbidden", http.StatusForbidden, ``, "Access forbidden"},
		{"other", http.StatusBadGateway, `upstream exploded`, "Request failed with status code 502"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := c.Get(context.Background(), "/x", nil, nil)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.message, apiErr.Message)
			assert.Equal(t, tc.status, StatusOf(err))
		})
	}

	t.Run("field errors are kept in any shape", func(t *testing.T) {
		shapes := map[string]string{
			"list per field":   `{"title":["required"]}`,
			"string per field": `{"title":"must not be blank"}`,
			"plain list":       `["title must not be blank"]`,
		}
		for name, errs := range shapes {
			t.Run(name, func(t *testing.T) {
				c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusBadRequest)
					w.Write([]byte(`{"success":false,"message":"Title is required","errors":` + errs + `}`))
				})

				_, err := c.Get(context.Background(), "/x", nil, nil)

				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "Title is required", apiErr.Message)
				assert.JSONEq(t, errs, string(apiErr.Errors))
			})
		}
	})

	t.Run("non-string message falls back", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":{"code":7},"errors":null}`))
		})

		_, err := c.Get(context.Background(), "/x", nil, nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "An error occurred", apiErr.Message)
		assert.Nil(t, apiErr.Errors)
	})

	t.Run("transport failure has no status", func(t *testing.T) {
		c, err := New(Config{BaseURL: "http://127.0.0.1:1"})
		require.NoError(t, err)

		_, err = c.Get(context.Background(), "/x", nil, nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Zero(t, apiErr.Status)
		assert.NotEmpty(t, apiErr.Message)
	})
}

func TestClient_RequestEncoding(t *testing.T) {
	t.Run("json body and query", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.False(t, r.URL.Query().Has("search"))
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"name":"Reading"}`, string(body))
			w.Write([]byte(`{"success":true}`))
		})

		page := 2
		q := NewQuery().Int("page", &page).Set("search", "")
		_, err := c.Post(context.Background(), "/parts", q, map[string]string{"name": "Reading"}, nil)
		require.NoError(t, err)
	})

	t.Run("multipart form", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "Set A", r.FormValue("title"))
			assert.Equal(t, "q1,q2", r.FormValue("questionIds"))

			file, header, err := r.FormFile("audioFiles")
			require.NoError(t, err)
			defer file.Close()
			content, _ := io.ReadAll(file)
			assert.Equal(t, "clip.mp3", header.Filename)
			assert.Equal(t, "RIFF", string(content))
			w.Write([]byte(`{"success":true}`))
		})

		form := NewForm().
			Field("title", "Set A").
			JoinedField("questionIds", []string{"q1", "q2"}).
			File("audioFiles", "clip.mp3", strings.NewReader("RIFF"))
		_, err := c.PostForm(context.Background(), "/question-sets", form, nil)
		require.NoError(t, err)
	})
}
