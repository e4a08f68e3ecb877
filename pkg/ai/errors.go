package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBody = 4 << 10

// StatusError is a non-2xx answer from a model backend.
type StatusError struct {
	Provider   string
	StatusCode int
	Type       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s returned status %d (%s): %s", e.Provider, e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// StatusCode extracts the backend status from err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// ErrEmptyResponse means the backend answered 2xx without any content.
var ErrEmptyResponse = errors.New("empty response from model")

func decodeAPIError(provider string, resp *http.Response) error {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Status  string `json:"status"`
		} `json:"error"`
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	se := &StatusError{Provider: provider, StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		se.Message = apiErr.Error.Message
		se.Type = apiErr.Error.Type
		if se.Type == "" {
			se.Type = apiErr.Error.Status
		}
		return se
	}

	se.Message = strings.TrimSpace(string(body))
	if se.Message == "" {
		se.Message = http.StatusText(resp.StatusCode)
	}
	return se
}
