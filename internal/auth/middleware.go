package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/httpx"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/shared"
)

// LoadActor binds the session's actor to the request context. A session whose
// backend token has expired is torn down instead.
func LoadActor(sessions *shared.SessionManager, logger *slog.Logger, now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			actor, ok := shared.LoadActor(sess)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			if actor.Expired(now()) {
				logger.Info("session token expired", slog.Int64("user_id", actor.ID))
				sessions.Destroy(sess)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
		})
	}
}

// RequireActor refuses requests without a signed-in actor.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.ActorFromContext(r.Context()); !ok {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TeardownOnUnauthorized returns a backend hook that ends the request's
// signed-in session once the backend rejects its token. Anonymous sessions
// keep their CSRF token so a failed login can be retried.
func TeardownOnUnauthorized(sessions *shared.SessionManager) func(ctx context.Context) {
	return func(ctx context.Context) {
		sess := shared.SessionFromContext(ctx)
		if _, ok := shared.LoadActor(sess); ok {
			sessions.Destroy(sess)
		}
	}
}
