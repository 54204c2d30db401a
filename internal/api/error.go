package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error is a non-2xx response from the feed service. Message carries the
// server-provided error text when the body had one.
type Error struct {
	Status  int
	Message string
	Op      string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

// NotFound reports whether the error is a 404.
func (e *Error) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// errorBody is the service's error envelope.
type errorBody struct {
	Error string `json:"error"`
}

func decodeError(resp *http.Response, method, path string) error {
	op := fmt.Sprintf("api %s %s", method, path)
	apiErr := &Error{Status: resp.StatusCode, Op: op}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}

// UserMessage extracts a display message from an error: the server-provided
// message when present, else the given fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
