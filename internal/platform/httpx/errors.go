// Package httpx provides HTTP response utilities.
package httpx

import (
	"context"
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	// ErrRejected marks a business-rule rejection reported by an upstream service.
	ErrRejected = errors.New("request rejected")
	// ErrUnavailable marks an upstream that could not be reached.
	ErrUnavailable = errors.New("service unavailable")
	// ErrIncomplete marks a multi-step operation that stopped half way.
	ErrIncomplete = errors.New("operation incomplete")
)

// UserMessager is implemented by errors carrying a message meant for the end user verbatim.
type UserMessager interface {
	UserMessage() string
}

// DataCarrier is implemented by errors that attach a payload to the failure envelope.
type DataCarrier interface {
	ResponseData() any
}

// StatusFor maps an error to the HTTP status used for it.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrIncomplete):
		return http.StatusBadGateway
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to the failure envelope.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	message := MessageFor(err)
	var carrier DataCarrier
	if errors.As(err, &carrier) {
		JSON(w, status, Envelope{Success: false, Data: carrier.ResponseData(), Message: message})
		return
	}
	Fail(w, status, message)
}

// MessageFor returns the user-facing message for err. Internal failures are not echoed.
func MessageFor(err error) string {
	if err == nil {
		return ""
	}
	var um UserMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	if StatusFor(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
