package errors

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo is a code and a client-safe message derived from a raw error.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps storage errors to client-safe codes and messages.
// context names the resource or action, e.g. "product", "create order".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Internal server error"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || IsDuplicateKey(err) {
		return duplicateKeyInfo(err.Error())
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "foreign key constraint"):
		return ErrorInfo{Code: ResourceConflict, Message: "Referenced data does not exist or is still in use"}
	case strings.Contains(lower, "not-null constraint"), strings.Contains(lower, "not null constraint"):
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	case strings.Contains(lower, "check constraint"):
		if strings.Contains(lower, "rating") {
			return ErrorInfo{Code: ReviewInvalidRating, Message: "Rating must be between 1 and 5"}
		}
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input"}
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "timeout"):
		return ErrorInfo{Code: InternalDatabaseError, Message: "Storage is unavailable, please retry later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

// IsDuplicateKey reports unique-constraint violations from postgres and sqlite.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate key") ||
		strings.Contains(lower, "unique constraint")
}

func duplicateKeyInfo(errStr string) ErrorInfo {
	lower := strings.ToLower(errStr)
	switch {
	case strings.Contains(lower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "User already exists"}
	case strings.Contains(lower, "reviews"):
		return ErrorInfo{Code: ReviewAlreadyExists, Message: "Product already reviewed"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists"}
}

func notFoundMessage(context string) string {
	lower := strings.ToLower(context)
	switch {
	case strings.Contains(lower, "product"):
		return "Product not found"
	case strings.Contains(lower, "order"):
		return "Order not found"
	case strings.Contains(lower, "user"):
		return "User not found"
	}
	return "Resource not found"
}

func defaultMessage(context string) string {
	if context == "" {
		return "Internal server error"
	}
	return "Error " + context
}

// ParseAndRespond parses err and writes it with statusCode.
func ParseAndRespond(c *gin.Context, statusCode int, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, statusCode, info.Code, info.Message)
}
