package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return token
}

func liveClaims(role string) Claims {
	return Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestInspector_Inspect(t *testing.T) {
	in := NewInspector(0)

	t.Run("live token", func(t *testing.T) {
		id, err := in.Inspect(signToken(t, liveClaims("user")))

		require.NoError(t, err)
		assert.Equal(t, "user-1", id.UserID)
		assert.Equal(t, models.RoleLearner, id.Role)
		require.NotNil(t, id.ExpiresAt)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := liveClaims("user")
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

		_, err := in.Inspect(signToken(t, claims))

		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("leeway tolerates small skew", func(t *testing.T) {
		claims := liveClaims("user")
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-10 * time.Second))

		_, err := NewInspector(time.Minute).Inspect(signToken(t, claims))

		assert.NoError(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := in.Inspect("not-a-jwt")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := in.Inspect("  ")
		assert.ErrorIs(t, err, ErrMissingToken)
	})
}

func TestClaims_UserRole(t *testing.T) {
	assert.Equal(t, models.RoleAdmin, (&Claims{Role: "ADMIN"}).UserRole())
	assert.Equal(t, models.RoleAdmin, (&Claims{Roles: []string{"ROLE_ADMIN"}}).UserRole())
	assert.Equal(t, models.RoleGuest, (&Claims{}).UserRole())
}

func newGuardedRouter(guard *Guard) *gin.Engine {
	r := gin.New()
	v1 := r.Group("/api/v1", guard.RequireAuth())
	v1.GET("/sessions/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserIDKey),
			"token":   gateway.TokenFromContext(c.Request.Context()),
		})
	})
	v1.POST("/user/login", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	v1.GET("/files/*name", func(c *gin.Context) { c.Status(http.StatusOK) })

	admin := v1.Group("/admin", guard.RequireRole(models.RoleAdmin))
	admin.GET("/tests", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestGuard(t *testing.T) {
	router := newGuardedRouter(NewGuard(NewInspector(0), nil))

	serve := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("missing token redirects to login", func(t *testing.T) {
		w := serve(http.MethodGet, "/api/v1/sessions/s1?tab=review", "")

		require.Equal(t, http.StatusUnauthorized, w.Code)
		var body GuardResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "/login?redirect=%2Fapi%2Fv1%2Fsessions%2Fs1%3Ftab%3Dreview", body.Redirect)
		assert.Equal(t, "unauthorized", body.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := liveClaims("user")
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

		w := serve(http.MethodGet, "/api/v1/sessions/s1", signToken(t, claims))

		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "token_expired")
	})

	t.Run("live token passes and is forwarded", func(t *testing.T) {
		token := signToken(t, liveClaims("user"))

		w := serve(http.MethodGet, "/api/v1/sessions/s1", token)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "user-1", body["user_id"])
		assert.Equal(t, token, body["token"])
	})

	t.Run("login is never gated", func(t *testing.T) {
		w := serve(http.MethodPost, "/api/v1/user/login", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("paths that only end like login are gated", func(t *testing.T) {
		w := serve(http.MethodGet, "/api/v1/files/x/user/login", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		w := serve(http.MethodGet, "/api/v1/admin/tests", signToken(t, liveClaims("user")))

		require.Equal(t, http.StatusForbidden, w.Code)
		var body GuardResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, UnauthorizedPath, body.Redirect)
	})

	t.Run("matching role", func(t *testing.T) {
		w := serve(http.MethodGet, "/api/v1/admin/tests", signToken(t, liveClaims("admin")))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestIsPublic(t *testing.T) {
	assert.True(t, IsPublic("/api/v1/user/login"))
	assert.True(t, IsPublic("/api/v1/user/signup/"))
	assert.True(t, IsPublic("/api/v1/user/token"))
	assert.False(t, IsPublic("/api/v1/sessions/s1/user/login"))
	assert.False(t, IsPublic("/evil/api/v1/user/login"))
	assert.False(t, IsPublic("/user/login"))
	assert.False(t, IsPublic("/"))
}
