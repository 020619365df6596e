package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/httpx"
)

// Enqueuer schedules a background cache warm-up.
type Enqueuer interface {
	EnqueueCatalogWarmup(ctx context.Context) error
}

// Handler serves catalog endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueuer Enqueuer
}

// NewHandler builds Handler. enqueuer may be nil.
func NewHandler(logger *slog.Logger, service *Service, enqueuer Enqueuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, enqueuer: enqueuer}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/suppliers", h.listSuppliers)
	r.Get("/products", h.listProducts)
	r.Post("/refresh", h.refresh)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.Suppliers(r.Context())
	if err != nil {
		h.logger.Error("list suppliers", slog.Any("error", err))
		httpx.OKWithMessage(w, []Supplier{}, "Failed to load suppliers: "+httpx.MessageFor(err))
		return
	}
	httpx.OK(w, suppliers)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var supplierID int64
	if raw := r.URL.Query().Get("supplierId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httpx.Fail(w, http.StatusBadRequest, "supplierId must be a positive integer")
			return
		}
		supplierID = id
	}
	products, err := h.service.Products(r.Context(), supplierID)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err), slog.Int64("supplier_id", supplierID))
		httpx.OKWithMessage(w, []Product{}, "Failed to load products: "+httpx.MessageFor(err))
		return
	}
	httpx.OK(w, products)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	version, err := h.service.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("invalidate catalog", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	queued := false
	if h.enqueuer != nil {
		if err := h.enqueuer.EnqueueCatalogWarmup(r.Context()); err != nil {
			h.logger.Warn("enqueue catalog warmup", slog.Any("error", err))
		} else {
			queued = true
		}
	}
	httpx.OK(w, map[string]any{"version": version, "warmupQueued": queued})
}
