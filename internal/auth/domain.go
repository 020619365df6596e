package auth

import (
	"fmt"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/httpx"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/shared"
)

// ErrInvalidCredentials is returned when the backend refuses the login.
var ErrInvalidCredentials = fmt.Errorf("auth: invalid email or password: %w", httpx.ErrUnauthorized)

// ErrSessionExpired is returned when the stored backend token has passed its expiry.
var ErrSessionExpired = fmt.Errorf("auth: session expired: %w", httpx.ErrUnauthorized)

// Profile is the user record the backend returns on login.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginResponse struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// SessionView is what the browser learns about its session.
type SessionView struct {
	Authenticated bool          `json:"authenticated"`
	User          *shared.Actor `json:"user,omitempty"`
	CSRFToken     string        `json:"csrfToken"`
}
