package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Code, http.StatusText(e.Code), e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// Unauthorized reports whether the backend rejected the session.
func (e *StatusError) Unauthorized() bool {
	return e.Code == http.StatusUnauthorized
}

// errorBody matches the backend's {"detail": "..."} error payload. Some
// handlers answer with {"error": "..."} instead.
type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Detail != "" {
		return eb.Detail
	}
	return eb.Error
}
