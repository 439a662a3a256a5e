package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrSessionExpired is returned by Checkout when the stored credential is
	// no longer accepted. The local session has been discarded by then.
	ErrSessionExpired = errors.New("Session expired. Please login again.")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrNetwork        = errors.New("network error")
)

// APIError is a non-2xx response from the storefront API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}

// FormError lists the checkout form fields that failed validation.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "invalid checkout form: " + strings.Join(parts, "; ")
}
