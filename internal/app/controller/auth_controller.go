package controller

import (
	"errors"
	"net/http"

	"github.com/gamevault/storefront-backend/internal/app/model"
	"github.com/gamevault/storefront-backend/internal/app/service"
	apperrors "github.com/gamevault/storefront-backend/internal/errors"
	"github.com/gamevault/storefront-backend/internal/middleware"
	"github.com/gamevault/storefront-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the session record handed to clients after register or
// login.
type AuthResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	IsAdmin      bool   `json:"isAdmin"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func newAuthResponse(user *model.User, tokens *util.TokenPair) AuthResponse {
	return AuthResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		IsAdmin:      user.IsAdmin(),
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
}

// Register handles user registration
// POST /api/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.BadRequest(c, apperrors.AuthEmailAlreadyExists, "User already exists")
		case errors.Is(err, util.ErrPasswordTooShort):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Password must be at least 6 characters")
		default:
			log.Error("Registration failed", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "registering user")
		}
		return
	}

	c.JSON(http.StatusCreated, newAuthResponse(user, tokens))
}

// Login handles user login
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithBindingError(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "logging in")
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(user, tokens))
}

// Validate confirms the presented credential still resolves to a user.
// GET /api/auth/validate
func (ctrl *AuthController) Validate(c *gin.Context) {
	user, ok := ctrl.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  user,
	})
}

// GetMe returns current user information
// GET /api/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	user, ok := ctrl.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout revokes the bearer token for the rest of its lifetime
// POST /api/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.authService.Logout(c.Request.Context(), middleware.GetToken(c)); err != nil {
		log.Error("Logout failed", err, nil)
		apperrors.InternalError(c, "Failed to log out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// currentUser loads the authenticated user. A token whose user has since
// been deleted is treated as unauthorized.
func (ctrl *AuthController) currentUser(c *gin.Context) (*model.User, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return nil, false
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Not authorized, token failed")
			return nil, false
		}
		middleware.GetLoggerFromContext(c).Error("Failed to load current user", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "user")
		return nil, false
	}
	return user, true
}
