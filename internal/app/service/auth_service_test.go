package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/internal/app/repository"
	"github.com/gamevault/storefront-backend/internal/db"
	"github.com/gamevault/storefront-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret"

type fakeRevoker struct {
	revoked map[string]time.Duration
	err     error
}

func (r *fakeRevoker) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if r.err != nil {
		return r.err
	}
	if r.revoked == nil {
		r.revoked = map[string]time.Duration{}
	}
	r.revoked[token] = ttl
	return nil
}

func setupAuthServiceTest(t *testing.T, revoker TokenRevoker) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return NewAuthService(
		repository.NewUserRepository(testDB),
		revoker,
		testJWTSecret,
		15*time.Minute,
		7*24*time.Hour,
	)
}

func TestAuthService_Register(t *testing.T) {
	authService := setupAuthServiceTest(t, nil)

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "Valid registration",
			userName: "Test User",
			email:    "Test@Example.com",
			password: "password123",
		},
		{
			name:     "Duplicate email ignores case",
			userName: "Another User",
			email:    "test@example.com",
			password: "password456",
			wantErr:  ErrEmailAlreadyExists,
		},
		{
			name:     "Short password",
			userName: "Short",
			email:    "short@example.com",
			password: "123",
			wantErr:  util.ErrPasswordTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Register(tt.userName, tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, tokens)
			assert.Equal(t, "test@example.com", user.Email)
			assert.Equal(t, tt.userName, user.Name)
			assert.Equal(t, model.RoleUser, user.Role)
			assert.False(t, user.IsAdmin())
			assert.NotEqual(t, tt.password, user.PasswordHash)
			assert.NotEmpty(t, tokens.AccessToken)
			assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	authService := setupAuthServiceTest(t, nil)

	_, _, err := authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "Valid login", email: "test@example.com", password: "password123"},
		{name: "Email is case-insensitive", email: "TEST@example.com", password: "password123"},
		{name: "Wrong password", email: "test@example.com", password: "wrongpassword", wantErr: ErrInvalidCredentials},
		{name: "Non-existing user", email: "notfound@example.com", password: "password123", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Login(tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "test@example.com", user.Email)

			claims, err := util.ValidateToken(tokens.AccessToken, testJWTSecret)
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
			assert.Equal(t, "user", claims.Role)
		})
	}
}

func TestAuthService_GetUserByID(t *testing.T) {
	authService := setupAuthServiceTest(t, nil)

	user, _, err := authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)

	found, err := authService.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	found, err = authService.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, found)
}

func TestAuthService_Logout(t *testing.T) {
	revoker := &fakeRevoker{}
	authService := setupAuthServiceTest(t, revoker)

	_, tokens, err := authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, authService.Logout(context.Background(), tokens.AccessToken))
	ttl, ok := revoker.revoked[tokens.AccessToken]
	require.True(t, ok)
	assert.InDelta(t, (15 * time.Minute).Seconds(), ttl.Seconds(), 5)

	assert.ErrorIs(t, authService.Logout(context.Background(), "garbage"), util.ErrInvalidToken)

	revoker.err = errors.New("redis down")
	assert.Error(t, authService.Logout(context.Background(), tokens.AccessToken))
}

func TestAuthService_LogoutWithoutRevoker(t *testing.T) {
	authService := setupAuthServiceTest(t, nil)

	_, tokens, err := authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)
	assert.NoError(t, authService.Logout(context.Background(), tokens.AccessToken))
}
