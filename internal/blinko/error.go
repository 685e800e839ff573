package blinko

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when a user has no Blinko URL or token set.
	ErrNotConfigured = errors.New("blinko service is not configured")
	// ErrMissingFilePath is returned when an upload response carries no file path.
	ErrMissingFilePath = errors.New("upload response is missing filePath")
)

// Kind classifies a failed remote call.
type Kind string

const (
	// KindAuth covers 401 and 403, never retried.
	KindAuth Kind = "auth"
	// KindNotFound covers 404, never retried.
	KindNotFound Kind = "not_found"
	// KindRateLimit covers 429, retried with backoff.
	KindRateLimit Kind = "rate_limit"
	// KindServer covers 5xx, retried with backoff.
	KindServer Kind = "server"
	// KindClient covers the remaining 4xx, never retried.
	KindClient Kind = "client"
	// KindNetwork covers transport and timeout failures, retried with backoff.
	KindNetwork Kind = "network"
)

// APIError is the classified failure of one remote call.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("blinko: %s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}

	return fmt.Sprintf("blinko: %s error: %s", e.Kind, e.Message)
}

// Retryable reports whether the retry policy applies to this class.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindRateLimit, KindServer, KindNetwork:
		return true
	case KindAuth, KindNotFound, KindClient:
		return false
	}

	return false
}

// classifyStatus maps a non-200 HTTP status to its error class.
func classifyStatus(status int, body string) *APIError {
	var kind Kind

	switch {
	case status == 401 || status == 403:
		kind = KindAuth
	case status == 404:
		kind = KindNotFound
	case status == 429:
		kind = KindRateLimit
	case status >= 500:
		kind = KindServer
	default:
		kind = KindClient
	}

	return &APIError{Kind: kind, StatusCode: status, Message: body}
}
