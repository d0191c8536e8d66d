package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:8080/api"
	DefaultTimeout = 10 * time.Second
)

// TokenSource supplies the bearer token for an outgoing request. An empty
// token means the request is sent without Authorization.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

type tokenKey struct{}

// WithToken attaches a caller's bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token attached by WithToken.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// ContextTokens forwards whatever token the inbound request carried.
var ContextTokens TokenSource = TokenFunc(func(ctx context.Context) (string, error) {
	return TokenFromContext(ctx), nil
})

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     *slog.Logger
}

// Client calls the upstream platform API and normalizes its envelopes.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Tokens == nil {
		cfg.Tokens = ContextTokens
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
		tokens:  cfg.Tokens,
		logger:  cfg.Logger.With("component", "gateway"),
	}, nil
}

// Envelope is the normalized upstream reply.
type Envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Success bool            `json:"success"`
}

// Decode unmarshals Data into out. A missing or null payload leaves out untouched.
func (e *Envelope) Decode(out any) error {
	if out == nil || len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

type Request struct {
	Method string
	Path   string
	Query  *Query
	Body   any
	Form   *Form
}

// Do sends req and returns the normalized envelope. Failures, including a
// 2xx reply with success=false, come back as *APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Envelope, error) {
	start := time.Now()

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.WarnContext(ctx, "Upstream request failed",
			"method", req.Method,
			"path", req.Path,
			"error", err)
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(fmt.Errorf("failed to read upstream response: %w", err))
	}

	c.logger.DebugContext(ctx, "Upstream request",
		"method", req.Method,
		"path", req.Path,
		"status_code", resp.StatusCode,
		"duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorFromResponse(resp.StatusCode, body)
	}

	env := normalize(body)
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "An error occurred"
		}
		return env, &APIError{Status: resp.StatusCode, Message: msg, Data: env.Data}
	}
	return env, nil
}

func (c *Client) Get(ctx context.Context, path string, query *Query, out any) (*Envelope, error) {
	return c.call(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, query *Query, body any, out any) (*Envelope, error) {
	return c.call(ctx, &Request{Method: http.MethodPost, Path: path, Query: query, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body any, out any) (*Envelope, error) {
	return c.call(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	return c.call(ctx, &Request{Method: http.MethodDelete, Path: path}, nil)
}

func (c *Client) PostForm(ctx context.Context, path string, form *Form, out any) (*Envelope, error) {
	return c.call(ctx, &Request{Method: http.MethodPost, Path: path, Form: form}, out)
}

func (c *Client) PutForm(ctx context.Context, path string, form *Form, out any) (*Envelope, error) {
	return c.call(ctx, &Request{Method: http.MethodPut, Path: path, Form: form}, out)
}

func (c *Client) call(ctx context.Context, req *Request, out any) (*Envelope, error) {
	env, err := c.Do(ctx, req)
	if err != nil {
		return env, err
	}
	if err := env.Decode(out); err != nil {
		return env, err
	}
	return env, nil
}

func (c *Client) newRequest(ctx context.Context, req *Request) (*http.Request, error) {
	// req.Path may carry escaped segments, so set both forms.
	rel := strings.TrimLeft(req.Path, "/")
	unescaped, err := url.PathUnescape(rel)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", req.Path, err)
	}
	target := *c.baseURL
	target.Path = c.baseURL.Path + "/" + unescaped
	target.RawPath = c.baseURL.EscapedPath() + "/" + rel
	if q := req.Query.Values(); len(q) > 0 {
		target.RawQuery = q.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Form != nil:
		buf, ct, err := req.Form.encode()
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	default:
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

// normalize unwraps {success, message, data}; any other body is the data itself.
func normalize(body []byte) *Envelope {
	var head struct {
		Success *bool           `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if len(body) > 0 && json.Unmarshal(body, &head) == nil && head.Success != nil {
		return &Envelope{
			Data:    nullToNil(head.Data),
			Message: head.Message,
			Success: *head.Success,
		}
	}
	return &Envelope{Data: nullToNil(body), Success: true}
}
