package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error is a non-2xx backend response. Error() returns the backend's detail
// verbatim so it can be shown to the operator as-is.
type Error struct {
	StatusCode int
	Detail     string
	RequestID  string
}

func (e *Error) Error() string {
	return e.Detail
}

// newError builds an Error from a response body, falling back to the HTTP
// status text when the body is missing, unparsable, or has no detail.
func newError(status int, body []byte, requestID string) *Error {
	e := &Error{StatusCode: status, RequestID: requestID}

	var payload struct {
		Detail interface{} `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if s, ok := payload.Detail.(string); ok {
			e.Detail = s
		} else if payload.Detail != nil {
			// FastAPI validation errors carry a list of objects.
			if raw, err := json.Marshal(payload.Detail); err == nil {
				e.Detail = string(raw)
			}
		}
	}

	if e.Detail == "" {
		e.Detail = http.StatusText(status)
	}
	if e.Detail == "" {
		e.Detail = "request failed"
	}
	return e
}

// Detail extracts the operator-facing message from err. Backend errors yield
// their detail; anything else (network, decode) yields err.Error().
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return err.Error()
}

// IsConflict reports whether err is a 409 from the backend (sync already running).
func IsConflict(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
