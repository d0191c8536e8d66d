package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-session-service/internal/auth"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
	"github.com/SAP-F-2025/exam-session-service/internal/validator"
)

// AuthAPI issues platform tokens.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error)
	Signup(ctx context.Context, req models.SignupRequest) error
	ExchangeToken(ctx context.Context, code, provider string) (*models.TokenResponse, error)
}

// UsersAPI reads user profiles.
type UsersAPI interface {
	BasicInfo(ctx context.Context, userID string) (*models.BasicUserInfo, error)
}

type ExchangeTokenRequest struct {
	Code     string `json:"code" validate:"required"`
	Provider string `json:"provider" validate:"required"`
}

type UserHandler struct {
	BaseHandler
	authAPI   AuthAPI
	usersAPI  UsersAPI
	validator *validator.Validator
}

func NewUserHandler(authAPI AuthAPI, usersAPI UsersAPI, validator *validator.Validator, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		authAPI:     authAPI,
		usersAPI:    usersAPI,
		validator:   validator,
	}
}

// Login exchanges credentials for a platform token
// @Summary Login
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /user/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	h.LogRequest(c, "User login", "email", req.Email)

	token, err := h.authAPI.Login(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

// Signup registers a new learner account
// @Summary Signup
// @Tags users
// @Accept json
// @Produce json
// @Param account body models.SignupRequest true "Account"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /user/signup [post]
func (h *UserHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	h.LogRequest(c, "User signup", "email", req.Email, "username", req.Username)

	if err := h.authAPI.Signup(c.Request.Context(), req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Account created", nil)
}

// ExchangeToken trades an OAuth code for a platform token
// @Summary Exchange OAuth code
// @Tags users
// @Accept json
// @Produce json
// @Param exchange body ExchangeTokenRequest true "Code and provider"
// @Success 200 {object} models.TokenResponse
// @Router /user/token [post]
func (h *UserHandler) ExchangeToken(c *gin.Context) {
	var req ExchangeTokenRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	token, err := h.authAPI.ExchangeToken(c.Request.Context(), req.Code, req.Provider)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

// GetCurrentUser returns the caller's profile together with the role read
// from the token
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}

	info, err := h.usersAPI.BasicInfo(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	body := gin.H{"user": info}
	if id, ok := auth.IdentityFrom(c); ok {
		body["role"] = id.Role
		if id.ExpiresAt != nil {
			body["expires_at"] = id.ExpiresAt
		}
	}
	c.JSON(http.StatusOK, body)
}

func (h *UserHandler) bindAndValidate(c *gin.Context, out interface{}) bool {
	if !bindJSON(c, out) {
		return false
	}
	if err := h.validator.Validate(out); err != nil {
		h.handleServiceError(c, err)
		return false
	}
	return true
}
