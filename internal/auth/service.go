package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/backend"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/shared"
)

// Backend is the subset of the REST client used for login.
type Backend interface {
	Post(ctx context.Context, path string, body, out any) error
}

// Service wraps authentication against the backend.
type Service struct {
	backend Backend
	parser  *jwt.Parser
	clock   func() time.Time
}

// NewService constructs a new Service.
func NewService(b Backend) *Service {
	return &Service{backend: b, parser: jwt.NewParser(), clock: time.Now}
}

// Login forwards credentials to the backend and returns the actor to bind to the session.
func (s *Service) Login(ctx context.Context, email, password string) (shared.Actor, error) {
	var resp loginResponse
	err := s.backend.Post(ctx, "auth/login", map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}, &resp)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return shared.Actor{}, ErrInvalidCredentials
		}
		return shared.Actor{}, err
	}
	if resp.Token == "" {
		return shared.Actor{}, fmt.Errorf("auth: login response carried no token: %w", backend.ErrUpstream)
	}
	expires, err := s.TokenExpiry(resp.Token)
	if err != nil {
		return shared.Actor{}, err
	}
	if expires != nil && !s.clock().Before(*expires) {
		return shared.Actor{}, ErrSessionExpired
	}
	return shared.Actor{
		ID:        resp.User.ID,
		Name:      resp.User.Name,
		Email:     resp.User.Email,
		Role:      resp.User.Role,
		ExpiresAt: expires,
		Token:     resp.Token,
	}, nil
}

// TokenExpiry reads the exp claim of a backend JWT without verifying the
// signature, which only the backend can do. Opaque tokens have no expiry.
func (s *Service) TokenExpiry(token string) (*time.Time, error) {
	if strings.Count(token, ".") != 2 {
		return nil, nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("auth: read token claims: %w", backend.ErrUpstream)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, nil
	}
	t := exp.Time
	return &t, nil
}
