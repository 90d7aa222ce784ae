package server

import (
	"fmt"
	"net/http"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiPurple = "\033[35m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
)

// verbColours covers the methods the admin routes are registered with.
var verbColours = map[string]string{
	http.MethodGet:     ansiGreen,
	http.MethodPost:    ansiBlue,
	http.MethodPut:     ansiCyan,
	http.MethodPatch:   ansiPurple,
	http.MethodDelete:  ansiYellow,
	http.MethodOptions: ansiGray,
}

func paint(colour, text string) string {
	return colour + text + ansiReset
}

// verb renders method as a fixed width tag so that paths line up in the dev log.
func verb(method string) string {
	colour, ok := verbColours[method]
	if !ok {
		colour = ansiGray
	}
	return "[" + paint(colour, fmt.Sprintf(" %-7s", method)) + "]"
}

// statusColour separates client mistakes such as expired tokens from server faults.
func statusColour(status int) string {
	if status >= http.StatusInternalServerError {
		return ansiRed
	}
	return ansiYellow
}

func routeLine(method, path string) string {
	return verb(method) + " " + path
}

func failureLine(method, path string, status int) string {
	return routeLine(method, path) + " " + paint(statusColour(status), fmt.Sprintf("%d %s", status, http.StatusText(status)))
}
