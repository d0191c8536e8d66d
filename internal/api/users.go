package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

type Users struct {
	client *gateway.Client
}

func NewUsers(client *gateway.Client) *Users {
	return &Users{client: client}
}

// BasicInfo returns the user's profile summary; an empty id means the
// caller's own profile.
func (u *Users) BasicInfo(ctx context.Context, userID string) (*models.BasicUserInfo, error) {
	path := "/users/me/basic"
	if userID != "" {
		path = "/users/" + url.PathEscape(userID) + "/basic"
	}
	var out models.BasicUserInfo
	if _, err := u.client.Get(ctx, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get basic user info: %w", err)
	}
	return &out, nil
}

type Auth struct {
	client *gateway.Client
}

func NewAuth(client *gateway.Client) *Auth {
	return &Auth{client: client}
}

func (a *Auth) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	var out models.TokenResponse
	if _, err := a.client.Post(ctx, "/auth/login", nil, req, &out); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &out, nil
}

func (a *Auth) Signup(ctx context.Context, req models.SignupRequest) error {
	if _, err := a.client.Post(ctx, "/auth/signup", nil, req, nil); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

// ExchangeToken trades an OAuth authorization code for a platform token.
func (a *Auth) ExchangeToken(ctx context.Context, code, provider string) (*models.TokenResponse, error) {
	q := gateway.NewQuery().Set("code", code).Set("provider", provider)
	var out models.TokenResponse
	if _, err := a.client.Post(ctx, "/auth/token", q, nil, &out); err != nil {
		return nil, fmt.Errorf("exchange token: %w", err)
	}
	return &out, nil
}
