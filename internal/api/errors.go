package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error is the normalized form of any non-2xx response from the DayLight API.
// Message is assembled from the response body in priority order: per-field
// validation errors, then a detail field, then the first non-field error,
// then the raw HTTP status text.
type Error struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
	RequestID  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("daylight api: %s (HTTP %d)", e.Message, e.StatusCode)
}

// HasFieldErrors reports whether the server returned per-field validation
// messages, letting forms branch on field-level vs global failures.
func (e *Error) HasFieldErrors() bool {
	return len(e.Fields) > 0
}

// IsStatus reports whether err is an API error carrying the given HTTP status.
func IsStatus(err error, statusCode int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == statusCode
}

// newError builds the normalized error for a failed response body.
func newError(statusCode int, body []byte, requestID string) *Error {
	apiErr := &Error{StatusCode: statusCode, RequestID: requestID}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = statusText(statusCode)
		return apiErr
	}

	fields := map[string][]string{}
	var detail string
	var nonField []string
	for key, raw := range payload {
		switch key {
		case "detail":
			_ = json.Unmarshal(raw, &detail)
		case "non_field_errors":
			_ = json.Unmarshal(raw, &nonField)
		default:
			var messages []string
			if err := json.Unmarshal(raw, &messages); err == nil && len(messages) > 0 {
				fields[key] = messages
			}
		}
	}
	if len(fields) > 0 {
		apiErr.Fields = fields
	}

	switch {
	case len(fields) > 0:
		apiErr.Message = joinFieldErrors(fields)
	case detail != "":
		apiErr.Message = detail
	case len(nonField) > 0:
		apiErr.Message = nonField[0]
	default:
		apiErr.Message = statusText(statusCode)
	}
	return apiErr
}

func joinFieldErrors(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, strings.Join(fields[key], " ")))
	}
	return strings.Join(parts, "; ")
}

func statusText(statusCode int) string {
	if text := http.StatusText(statusCode); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", statusCode)
}
