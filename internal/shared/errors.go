package shared

import (
	"fmt"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/httpx"
)

var (
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = fmt.Errorf("csrf token missing: %w", httpx.ErrForbidden)
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = fmt.Errorf("csrf token mismatch: %w", httpx.ErrForbidden)
	// ErrUnauthenticated occurs when no actor is bound to the request.
	ErrUnauthenticated = fmt.Errorf("authentication required: %w", httpx.ErrUnauthorized)
	// ErrActionInProgress occurs when another mutation holds the record lock.
	ErrActionInProgress = fmt.Errorf("another action on this record is in progress: %w", httpx.ErrConflict)
	// ErrIdempotencyConflict indicates a duplicate key.
	ErrIdempotencyConflict = fmt.Errorf("idempotent request already processed: %w", httpx.ErrDuplicate)
)
