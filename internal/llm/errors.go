package llm

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrMissingCredential is returned before any request when no API key is configured.
var ErrMissingCredential = errors.New("inference API key is not configured")

// ServiceError is a non-success HTTP response from the inference endpoint.
type ServiceError struct {
	StatusCode    int
	Message       string
	EstimatedTime time.Duration // server hint for when to retry, zero when absent
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("inference API error: %d", e.StatusCode)
	}
	return fmt.Sprintf("inference API error: %d | %s", e.StatusCode, e.Message)
}

// HTTPStatusCode returns the response status.
func (e *ServiceError) HTTPStatusCode() int { return e.StatusCode }

// Retryable reports whether the status belongs to the capacity / cold-start
// class worth waiting for.
func (e *ServiceError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusServiceUnavailable, http.StatusTooManyRequests, http.StatusInternalServerError:
		return true
	}
	return false
}

// OutputKind classifies why a completion could not be turned into questions.
type OutputKind string

const (
	OutputEmpty     OutputKind = "empty"
	OutputMalformed OutputKind = "malformed"
	OutputSchema    OutputKind = "schema"
)

// OutputError is a successful response whose text is unusable.
type OutputError struct {
	Kind OutputKind
	Err  error
}

func (e *OutputError) Error() string {
	switch e.Kind {
	case OutputEmpty:
		return "model returned an empty reply"
	case OutputMalformed:
		return fmt.Sprintf("model reply is not valid JSON: %v", e.Err)
	default:
		return fmt.Sprintf("model reply does not match the question schema: %v", e.Err)
	}
}

func (e *OutputError) Unwrap() error { return e.Err }
