package fetch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// NetworkError means the manifest text could not be retrieved. It is
// never retried here.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type StatusError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf(
			"http %d (%s): %s",
			e.StatusCode, e.Code, e.Message,
		)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

func parseStatusError(status int, body []byte) error {
	var parsed struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		return &StatusError{
			StatusCode: status,
			Message:    parsed.Error,
			Code:       parsed.Code,
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &StatusError{StatusCode: status, Message: msg}
}
