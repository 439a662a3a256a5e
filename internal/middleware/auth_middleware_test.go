package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gamevault/storefront-backend/internal/app/model"
	apperrors "github.com/gamevault/storefront-backend/internal/errors"
	"github.com/gamevault/storefront-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	return f.revoked[token], f.err
}

func setupMiddlewareTest(checker RevocationChecker) (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	return router, NewAuthMiddleware(testJWTSecret, checker)
}

func generateTestTokens(t *testing.T, userID uint, role model.UserRole, expiry time.Duration) *util.TokenPair {
	tokens, err := util.GenerateTokenPair(userID, "test@example.com", string(role), testJWTSecret, expiry, 7*24*time.Hour)
	require.NoError(t, err)
	return tokens
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	valid := generateTestTokens(t, 7, model.RoleUser, 15*time.Minute)
	expired := generateTestTokens(t, 7, model.RoleUser, -time.Minute)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "valid token", header: "Bearer " + valid.AccessToken, wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + valid.AccessToken, wantStatus: http.StatusOK},
		{name: "no header", header: "", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenInvalid},
		{name: "expired token", header: "Bearer " + expired.AccessToken, wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenExpired},
		{name: "refresh token", header: "Bearer " + valid.RefreshToken, wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest(nil)
			router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
				userID, _ := GetUserID(c)
				role, _ := GetUserRole(c)
				c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role, "token": GetToken(c) != ""})
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
				return
			}
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, float64(7), body["user_id"])
			assert.Equal(t, "user", body["role"])
			assert.Equal(t, true, body["token"])
		})
	}
}

func TestAuthMiddleware_Revocation(t *testing.T) {
	tokens := generateTestTokens(t, 1, model.RoleUser, 15*time.Minute)

	tests := []struct {
		name       string
		checker    *fakeRevocations
		wantStatus int
	}{
		{name: "not revoked", checker: &fakeRevocations{}, wantStatus: http.StatusOK},
		{name: "revoked", checker: &fakeRevocations{revoked: map[string]bool{tokens.AccessToken: true}}, wantStatus: http.StatusUnauthorized},
		{name: "store failure", checker: &fakeRevocations{err: errors.New("redis down")}, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest(tt.checker)
			router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_RequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		role       model.UserRole
		wantStatus int
	}{
		{name: "admin", role: model.RoleAdmin, wantStatus: http.StatusOK},
		{name: "user", role: model.RoleUser, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest(nil)
			router.GET("/admin", auth.Authenticate(), auth.RequireAdmin(), func(c *gin.Context) {
				assert.True(t, IsAdmin(c))
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+generateTestTokens(t, 1, tt.role, time.Minute).AccessToken)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusForbidden {
				body := decodeError(t, w)
				assert.Equal(t, apperrors.AuthzForbidden, body.Error)
				assert.Equal(t, "Not authorized as an admin", body.Message)
			}
		})
	}
}

func TestAuthMiddleware_RequireRoleWithoutAuthenticate(t *testing.T) {
	router, auth := setupMiddlewareTest(nil)
	router.GET("/admin", auth.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperrors.AuthzRoleNotFound, decodeError(t, w).Error)
}
