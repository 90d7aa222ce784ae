package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// CodeTokenExpired is the error code the API sends with a 401 when only the access token aged out.
const CodeTokenExpired = "TOKEN_EXPIRED"

var (
	// ErrRefreshFailed wraps every failed exchange of the refresh token. The session
	// behind it can no longer be used.
	ErrRefreshFailed = errors.New("token refresh failed")

	ErrInvalidRefreshResponse = errors.New("refresh response carried no access token")
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       []byte
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: body}

	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		e.Code = resp.Code
		e.Message = resp.Message
		if e.Message == "" {
			e.Message = resp.Error
		}
	}
	return e
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
	case e.Code != "":
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Code)
	case len(e.Body) > 0:
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
	default:
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status behind err, or 0 for transport failures.
func StatusCode(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.StatusCode
	}
	return 0
}

func IsTokenExpired(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusUnauthorized && apiErr.Code == CodeTokenExpired
}

func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

type failureKind int

const (
	failureOther failureKind = iota
	failureForbidden
	failureTokenExpired
)

func classify(err error) failureKind {
	switch {
	case IsForbidden(err):
		return failureForbidden
	case IsTokenExpired(err):
		return failureTokenExpired
	default:
		return failureOther
	}
}
