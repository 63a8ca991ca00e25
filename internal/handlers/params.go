package handlers

import (
	"net/http"
	"strconv"
)

// intQuery reads an integer query parameter, falling back on bad input
func intQuery(r *http.Request, name string, fallback int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
