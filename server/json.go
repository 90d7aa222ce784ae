package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Error codes carried in the "code" field of error bodies.
const (
	codeTokenExpired        = "TOKEN_EXPIRED"
	codeInvalidToken        = "INVALID_TOKEN"
	codeSessionRevoked      = "SESSION_REVOKED"
	codeUnauthorized        = "UNAUTHORIZED"
	codeInsufficientRole    = "INSUFFICIENT_ROLE"
	codeInvalidCredentials  = "INVALID_CREDENTIALS"
	codeUserNotFound        = "USER_NOT_FOUND"
	codeUserBlocked         = "USER_BLOCKED"
	codeTooManyAttempts     = "TOO_MANY_ATTEMPTS"
	codeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	codeRefreshTokenExpired = "REFRESH_TOKEN_EXPIRED"
	codeBadRequest          = "BAD_REQUEST"
	codeNotFound            = "NOT_FOUND"
	codeConflict            = "CONFLICT"
	codeInvalidOrderState   = "INVALID_ORDER_STATE"
	codeInternal            = "INTERNAL_ERROR"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body: "+err.Error())
	return false
}
