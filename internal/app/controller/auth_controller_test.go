package controller

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authBody struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

func TestAuthController_Register(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"name":     "New Player",
		"email":    "New@Example.com",
		"password": "hunter22",
	}, "")
	requireStatus(t, w, http.StatusCreated)

	var body authBody
	decodeJSON(t, w, &body)
	assert.NotZero(t, body.ID)
	assert.Equal(t, "New Player", body.Name)
	assert.Equal(t, "new@example.com", body.Email)
	assert.False(t, body.IsAdmin)
	assert.NotEmpty(t, body.Token)

	// The issued token is immediately usable.
	w = env.do(t, http.MethodGet, "/api/auth/me", nil, body.Token)
	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `"email":"new@example.com"`)
}

func TestAuthController_RegisterRejects(t *testing.T) {
	tests := []struct {
		name      string
		body      interface{}
		wantCode  string
		wantMsg   string
		wantField string
	}{
		{
			name:     "existing email",
			body:     gin.H{"name": "Dup", "email": "jane@example.com", "password": "secret123"},
			wantCode: "AUTH_EMAIL_EXISTS",
			wantMsg:  "User already exists",
		},
		{
			name:      "missing email",
			body:      gin.H{"name": "No Email", "password": "secret123"},
			wantCode:  "VALIDATION_INVALID_INPUT",
			wantField: "email",
		},
		{
			name:      "short password",
			body:      gin.H{"name": "Short", "email": "short@example.com", "password": "123"},
			wantCode:  "VALIDATION_INVALID_INPUT",
			wantField: "password",
		},
		{
			name:     "malformed json",
			body:     `{"name":`,
			wantCode: "VALIDATION_INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupControllerTest(t)
			w := env.do(t, http.MethodPost, "/api/auth/register", tt.body, "")
			requireStatus(t, w, http.StatusBadRequest)

			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.Error)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Message)
			}
			if tt.wantField != "" {
				assert.Contains(t, body.Fields, tt.wantField)
			}
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "admin@example.com", "password": "secret123"}, "")
	requireStatus(t, w, http.StatusOK)
	var body authBody
	decodeJSON(t, w, &body)
	assert.Equal(t, env.admin.ID, body.ID)
	assert.True(t, body.IsAdmin)
	assert.NotEmpty(t, body.Token)

	w = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "admin@example.com", "password": "wrong-pass"}, "")
	requireStatus(t, w, http.StatusUnauthorized)
	assert.Equal(t, "Invalid email or password", decodeError(t, w).Message)

	w = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "nobody@example.com", "password": "secret123"}, "")
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestAuthController_Validate(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(t, http.MethodGet, "/api/auth/validate", nil, env.userToken)
	requireStatus(t, w, http.StatusOK)
	var body struct {
		Valid bool     `json:"valid"`
		User  authBody `json:"user"`
	}
	decodeJSON(t, w, &body)
	assert.True(t, body.Valid)
	assert.Equal(t, env.user.ID, body.User.ID)
	assert.Equal(t, "Jane Player", body.User.Name)

	w = env.do(t, http.MethodGet, "/api/auth/validate", nil, "")
	requireStatus(t, w, http.StatusUnauthorized)
	assert.Equal(t, "Not authorized, no token", decodeError(t, w).Message)

	w = env.do(t, http.MethodGet, "/api/auth/validate", nil, "tampered.token.value")
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestAuthController_ValidateDeletedUser(t *testing.T) {
	env := setupControllerTest(t)
	require.NoError(t, env.db.Delete(env.user).Error)

	w := env.do(t, http.MethodGet, "/api/auth/validate", nil, env.userToken)
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestAuthController_LogoutRevokesToken(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(t, http.MethodPost, "/api/auth/logout", nil, env.userToken)
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodGet, "/api/auth/validate", nil, env.userToken)
	requireStatus(t, w, http.StatusUnauthorized)
	assert.Equal(t, "AUTH_TOKEN_REVOKED", decodeError(t, w).Error)

	// Other sessions are unaffected.
	w = env.do(t, http.MethodGet, "/api/auth/validate", nil, env.adminToken)
	requireStatus(t, w, http.StatusOK)
}
