package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	_ "github.com/WiseCart620/wisecartfrontend-sub001/testing"
)

type countingEnqueuer struct{ calls int }

func (c *countingEnqueuer) EnqueueCatalogWarmup(context.Context) error {
	c.calls++
	return nil
}

func serve(t *testing.T, h *Handler, method, target string) (int, map[string]any) {
	t.Helper()
	r := chi.NewRouter()
	h.MountRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestListSuppliersFallsBackToEmptyList(t *testing.T) {
	src := &memorySource{fail: errors.New("connection refused")}
	h := NewHandler(slog.Default(), NewService(src, nil, nil), nil)

	code, body := serve(t, h, http.MethodGet, "/suppliers")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])
	require.Equal(t, []any{}, body["data"])
	require.Contains(t, body["message"], "Failed to load suppliers")
}

func TestListProductsRejectsBadSupplier(t *testing.T) {
	h := NewHandler(slog.Default(), NewService(&memorySource{}, nil, nil), nil)

	code, body := serve(t, h, http.MethodGet, "/products?supplierId=abc")
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, false, body["success"])
}

func TestRefreshEnqueuesWarmup(t *testing.T) {
	src := &memorySource{}
	svc, _ := newTestService(t, src)
	enq := &countingEnqueuer{}
	h := NewHandler(slog.Default(), svc, enq)

	code, body := serve(t, h, http.MethodPost, "/refresh")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, enq.calls)
	data := body["data"].(map[string]any)
	require.Equal(t, true, data["warmupQueued"])
}
