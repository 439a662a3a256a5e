package controller

import (
	"strconv"

	apperrors "github.com/gamevault/storefront-backend/internal/errors"
	"github.com/gamevault/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive numeric path parameter. On failure it writes
// a 400 and returns false.
func parseIDParam(c *gin.Context, name, message string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid id parameter", map[string]interface{}{
			"param": name,
			"value": c.Param(name),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, message)
		return 0, false
	}
	return uint(id), true
}

// requireUserID returns the authenticated caller or writes a 401.
func requireUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return 0, false
	}
	return userID, true
}
