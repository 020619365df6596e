// Package files proxies stored attachments from the file storage service.
package files

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/httpx"
)

// Streamer opens a raw response from the storage service.
type Streamer interface {
	Stream(ctx context.Context, path string, query url.Values) (*http.Response, error)
}

// Handler serves /files/serve and /files/download.
type Handler struct {
	logger   *slog.Logger
	streamer Streamer
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, streamer Streamer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, streamer: streamer}
}

// MountRoutes registers the proxy routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/serve", h.proxy("files/serve", false))
	r.Get("/download", h.proxy("files/download", true))
}

var passHeaders = []string{"Content-Type", "Content-Length", "Last-Modified", "ETag", "Cache-Control"}

func (h *Handler) proxy(upstream string, attachment bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := cleanPath(r.URL.Query().Get("path"))
		if !ok {
			httpx.Fail(w, http.StatusBadRequest, "invalid file path")
			return
		}
		resp, err := h.streamer.Stream(r.Context(), upstream, url.Values{"path": {p}})
		if err != nil {
			h.logger.Warn("file proxy", slog.String("path", p), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		for _, name := range passHeaders {
			if v := resp.Header.Get(name); v != "" {
				w.Header().Set(name, v)
			}
		}
		if attachment {
			disposition := resp.Header.Get("Content-Disposition")
			if disposition == "" {
				disposition = `attachment; filename="` + strings.ReplaceAll(path.Base(p), `"`, "") + `"`
			}
			w.Header().Set("Content-Disposition", disposition)
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			h.logger.Debug("file proxy copy", slog.String("path", p), slog.Any("error", err))
		}
	}
}

// cleanPath normalises a storage path and refuses traversal or absolute URLs.
func cleanPath(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "://") || strings.Contains(raw, `\`) {
		return "", false
	}
	for _, seg := range strings.Split(raw, "/") {
		if seg == ".." {
			return "", false
		}
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+raw), "/")
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}
