package auth

import (
	"net/http"

	"github.com/jrsteele09/rxadmin/gateway"
)

const (
	msgInvalidCredentials = "Invalid email or password. Please check your credentials and try again."
	msgAccountNotFound    = "Account not found. Please check your email address or create a new account."
	msgTooManyAttempts    = "Too many login attempts. Please wait a moment before trying again."
	msgServerError        = "Our servers are experiencing issues. Please try again later."
	msgLoginFallback      = "Unable to sign in. Please try again later."
)

// FriendlyLoginError turns a Login failure into a message fit to show the user.
func FriendlyLoginError(err error) string {
	if err == nil {
		return ""
	}

	switch gateway.StatusCode(err) {
	case http.StatusUnauthorized:
		return msgInvalidCredentials
	case http.StatusNotFound:
		return msgAccountNotFound
	case http.StatusTooManyRequests:
		return msgTooManyAttempts
	case http.StatusInternalServerError:
		return msgServerError
	}

	if apiErr, ok := gateway.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return msgLoginFallback
}
