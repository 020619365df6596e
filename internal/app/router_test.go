package app_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/app"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/auth"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/catalog"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/observability"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/backend"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/procurement"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/shared"
	"github.com/WiseCart620/wisecartfrontend-sub001/jobs"
	_ "github.com/WiseCart620/wisecartfrontend-sub001/testing"
)

type apiBody struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type server struct {
	handler     http.Handler
	backendAuth []string
}

func newServer(t *testing.T) *server {
	t.Helper()
	s := &server{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.backendAuth = append(s.backendAuth, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/auth/login":
			_, _ = io.WriteString(w, `{"success":true,"data":{"token":"opaque-token","user":{"id":5,"name":"Maria Santos","email":"maria@example.com","role":"purchaser"}}}`)
		case "/api/inventory-requests":
			_, _ = io.WriteString(w, `{"success":true,"data":[]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	cfg := &app.Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second, RateLimitPerMinute: 1000}
	sessions := shared.NewSessionManager(redisClient, "wisecart_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")
	client := backend.NewClient(backend.Config{
		BaseURL:        upstream.URL + "/api",
		Tokens:         shared.ActorToken,
		OnUnauthorized: auth.TeardownOnUnauthorized(sessions),
	})

	catalogService := catalog.NewService(catalog.NewRepository(client), catalog.NewCache(redisClient, time.Minute), nil)
	procurementService := procurement.NewService(procurement.NewRepository(client), catalogService, procurement.Dependencies{})

	s.handler = app.NewRouter(app.RouterParams{
		Config:             cfg,
		SessionManager:     sessions,
		CSRFManager:        csrf,
		AuthHandler:        auth.NewHandler(nil, auth.NewService(client), sessions, csrf),
		CatalogHandler:     catalog.NewHandler(nil, catalogService, nil),
		ProcurementHandler: procurement.NewHandler(nil, procurementService, 1<<20),
		JobHandler:         jobs.NewHandler(nil, nil),
		Metrics:            observability.NewMetrics(),
	})
	return s
}

func (s *server) do(t *testing.T, method, target, body string, cookies []*http.Cookie, headers map[string]string) (*httptest.ResponseRecorder, apiBody) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:1234"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	var out apiBody
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestHealthzAndSecurityHeaders(t *testing.T) {
	s := newServer(t)
	rec, body := s.do(t, http.MethodGet, "/healthz", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, body.Success)
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestProcurementRequiresSignIn(t *testing.T) {
	s := newServer(t)
	rec, body := s.do(t, http.MethodGet, "/procurement/irrs", "", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, body.Success)
	require.Empty(t, s.backendAuth)
}

func TestLoginFlowWithCSRF(t *testing.T) {
	s := newServer(t)

	rec, body := s.do(t, http.MethodGet, "/auth/session", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Authenticated bool   `json:"authenticated"`
		CSRFToken     string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &view))
	require.False(t, view.Authenticated)
	require.NotEmpty(t, view.CSRFToken)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	creds := `{"email":"maria@example.com","password":"secret"}`
	rec, body = s.do(t, http.MethodPost, "/auth/login", creds, cookies, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, body.Success)

	rec, body = s.do(t, http.MethodPost, "/auth/login", creds, cookies, map[string]string{
		shared.CSRFHeader: view.CSRFToken,
		"Content-Type":    "application/json",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, body.Success)
	signedIn := rec.Result().Cookies()
	require.NotEmpty(t, signedIn)
	require.NotEqual(t, cookies[0].Value, signedIn[0].Value)

	rec, body = s.do(t, http.MethodGet, "/procurement/irrs", "", signedIn, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.JSONEq(t, `[]`, string(body.Data))
	require.Equal(t, "Bearer opaque-token", s.backendAuth[len(s.backendAuth)-1])
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	s := newServer(t)
	rec, body := s.do(t, http.MethodGet, "/nope", "", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Route not found", body.Message)
}

func TestJobsHealthWithoutInspector(t *testing.T) {
	s := newServer(t)
	rec, body := s.do(t, http.MethodGet, "/jobs/health", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, string(body.Data), `"queue":"default"`)
}
