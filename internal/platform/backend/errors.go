package backend

import (
	"fmt"
	"net/http"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/httpx"
)

var (
	// ErrUnauthorized indicates a missing or expired bearer token.
	ErrUnauthorized = fmt.Errorf("backend: unauthorized: %w", httpx.ErrUnauthorized)
	// ErrNotFound indicates the requested record does not exist upstream.
	ErrNotFound = fmt.Errorf("backend: not found: %w", httpx.ErrNotFound)
	// ErrRejected indicates a business-rule rejection (success:false).
	ErrRejected = fmt.Errorf("backend: rejected: %w", httpx.ErrRejected)
	// ErrUpstream indicates the backend failed with a 5xx.
	ErrUpstream = fmt.Errorf("backend: upstream failure: %w", httpx.ErrUnavailable)
	// ErrNetwork indicates the backend could not be reached at all.
	ErrNetwork = fmt.Errorf("backend: network failure: %w", httpx.ErrUnavailable)
)

// APIError is a failure reported by the backend, carrying its message verbatim.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// UserMessage returns the backend message unchanged.
func (e *APIError) UserMessage() string {
	return e.Message
}

// Unwrap classifies the failure by status.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= http.StatusInternalServerError:
		return ErrUpstream
	default:
		return ErrRejected
	}
}

// NetworkError wraps a transport failure.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend: %s %s: %v", e.Method, e.Path, e.Err)
}

// UserMessage hides transport details from end users.
func (e *NetworkError) UserMessage() string {
	return "backend service is unreachable, please try again"
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}
