package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUserRoleKey = "user_role"
	contextIdentityKey = "identity"

	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// PublicPaths are the full request paths that are never gated.
var PublicPaths = []string{"/api/v1/user/login", "/api/v1/user/signup", "/api/v1/user/token"}

// GuardResponse is the body of a rejected request. Redirect tells the UI
// where to send the user.
type GuardResponse struct {
	Message  string `json:"message"`
	Code     string `json:"code"`
	Redirect string `json:"redirect"`
}

type Guard struct {
	inspector *Inspector
	logger    *slog.Logger
}

func NewGuard(inspector *Inspector, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{inspector: inspector, logger: logger.With("middleware", "auth")}
}

// RequireAuth rejects requests without a live bearer token. Accepted
// requests carry the identity in the gin context and the token in the
// request context, where the gateway client picks it up.
func (g *Guard) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsPublic(c.Request.URL.Path) {
			c.Next()
			return
		}

		id, err := g.inspector.Inspect(BearerToken(c.GetHeader("Authorization")))
		if err != nil {
			code := "unauthorized"
			if errors.Is(err, ErrTokenExpired) {
				code = "token_expired"
			}
			g.logger.Debug("Rejected unauthenticated request", "path", c.Request.URL.Path, "reason", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, GuardResponse{
				Message:  err.Error(),
				Code:     code,
				Redirect: LoginRedirect(c.Request.URL.RequestURI()),
			})
			return
		}

		c.Set(contextIdentityKey, id)
		c.Set(ContextUserIDKey, id.UserID)
		c.Set(ContextUserRoleKey, id.Role)
		c.Request = c.Request.WithContext(gateway.WithToken(c.Request.Context(), id.Token))
		c.Next()
	}
}

// RequireRole must follow RequireAuth. It rejects callers whose role is not
// role.
func (g *Guard) RequireRole(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsPublic(c.Request.URL.Path) {
			c.Next()
			return
		}
		id, ok := IdentityFrom(c)
		if !ok || id.Role != role {
			g.logger.Warn("Rejected request with insufficient role",
				"path", c.Request.URL.Path,
				"required_role", role,
				"user_id", c.GetString(ContextUserIDKey))
			c.AbortWithStatusJSON(http.StatusForbidden, GuardResponse{
				Message:  "Access forbidden",
				Code:     "forbidden",
				Redirect: UnauthorizedPath,
			})
			return
		}
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(contextIdentityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok
}

// LoginRedirect builds the login location that returns to path afterwards.
func LoginRedirect(path string) string {
	return LoginPath + "?" + url.Values{"redirect": {path}}.Encode()
}

// IsPublic reports whether path is exactly one of PublicPaths. A trailing
// slash is ignored.
func IsPublic(path string) bool {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return slices.Contains(PublicPaths, path)
}
