package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/feedbackportal/portal-client/internal/errors"
	"github.com/pkg/errors"
)

const maxErrorBodyBytes = 1 << 20

// Error is a non-2xx backend response. Message carries the backend's error
// payload when one was present.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses onto sentinel errors so callers can use
// errors.Is without inspecting status codes.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	}
	return nil
}

// Message extracts the backend's human-readable error message from err,
// falling back to the given generic message.
func Message(err error, fallback string) string {
	var transportErr *Error
	if errors.As(err, &transportErr) && transportErr.Message != "" {
		return transportErr.Message
	}
	return fallback
}

// IsStatus reports whether err is a backend error with the given status.
func IsStatus(err error, status int) bool {
	var transportErr *Error
	return errors.As(err, &transportErr) && transportErr.Status == status
}

func errorFromResponse(resp *http.Response) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	backendErr := &Error{Status: resp.StatusCode}
	if readErr == nil {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			backendErr.Message = payload.Message
		}
	}
	return backendErr
}
