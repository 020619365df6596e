package procurement

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/httpx"
)

const defaultUploadMax int64 = 10 << 20

// Handler exposes the procurement workflow as JSON endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validate  *validator.Validate
	uploadMax int64
}

// NewHandler builds Handler. uploadMax bounds multipart bodies; zero uses 10 MiB.
func NewHandler(logger *slog.Logger, service *Service, uploadMax int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if uploadMax <= 0 {
		uploadMax = defaultUploadMax
	}
	return &Handler{logger: logger, service: service, validate: newValidator(), uploadMax: uploadMax}
}

// MountRoutes registers procurement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/irrs", func(r chi.Router) {
		r.Get("/", h.listIRRs)
		r.Post("/", h.createIRR)
		r.Post("/batch", h.createIRRBatch)
		r.Get("/{id}", h.getIRR)
		r.Put("/{id}", h.updateIRR)
		r.Delete("/{id}", h.deleteIRR)
		r.Post("/{id}/proceed", h.proceedIRR)
	})
	r.Route("/rpqs", func(r chi.Router) {
		r.Get("/", h.listRPQs)
		r.Post("/", h.createRPQ)
		r.Get("/{id}", h.getRPQ)
		r.Put("/{id}", h.updateRPQ)
		r.Delete("/{id}", h.deleteRPQ)
		r.Post("/{id}/confirm", h.confirmRPQ)
		r.Post("/{id}/documents", h.attachDocument)
		r.Delete("/{id}/documents/{kind}", h.removeDocument)
	})
	r.Route("/pos", func(r chi.Router) {
		r.Get("/", h.listPOs)
		r.Get("/{id}", h.getPO)
		r.Put("/{id}/pricing", h.updatePricing)
		r.Post("/{id}/submit", h.submitPO)
		r.Post("/{id}/upload", h.uploadPOFile)
		r.Get("/{id}/payments", h.listPayments)
		r.Post("/{id}/payments", h.recordPayment)
	})
	r.Route("/calc", func(r chi.Router) {
		r.Post("/allocation", h.calcAllocation)
		r.Post("/payment-check", h.calcPaymentCheck)
		r.Post("/price-entry", h.calcPriceEntry)
		r.Post("/line-items", h.calcAddLineItem)
	})
}

func (h *Handler) listIRRs(w http.ResponseWriter, r *http.Request) {
	irrs, err := h.service.ListInventoryRequests(r.Context())
	if err != nil {
		h.listFailed(w, "inventory requests", err)
		return
	}
	out := make([]InventoryRequestView, len(irrs))
	for i, irr := range irrs {
		out[i] = ViewIRR(irr)
	}
	httpx.OK(w, out)
}

func (h *Handler) createIRR(w http.ResponseWriter, r *http.Request) {
	var req irrRequest
	if !h.decode(w, r, &req) {
		return
	}
	irr, err := h.service.CreateInventoryRequest(r.Context(), req.input())
	if err != nil {
		h.fail(w, "create inventory request", err)
		return
	}
	httpx.Created(w, ViewIRR(irr))
}

func (h *Handler) createIRRBatch(w http.ResponseWriter, r *http.Request) {
	var req irrBatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	inputs := make([]InventoryRequestInput, len(req.Requests))
	for i, one := range req.Requests {
		inputs[i] = one.input()
	}
	irrs, err := h.service.CreateInventoryRequests(r.Context(), inputs)
	if err != nil {
		h.fail(w, "create inventory requests", err)
		return
	}
	out := make([]InventoryRequestView, len(irrs))
	for i, irr := range irrs {
		out[i] = ViewIRR(irr)
	}
	httpx.Created(w, out)
}

func (h *Handler) getIRR(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	irr, err := h.service.GetInventoryRequest(r.Context(), id)
	if err != nil {
		h.fail(w, "get inventory request", err)
		return
	}
	httpx.OK(w, ViewIRR(irr))
}

func (h *Handler) updateIRR(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req irrRequest
	if !h.decode(w, r, &req) {
		return
	}
	irr, err := h.service.UpdateInventoryRequest(r.Context(), id, req.input())
	if err != nil {
		h.fail(w, "update inventory request", err, slog.Int64("id", id))
		return
	}
	httpx.OK(w, ViewIRR(irr))
}

func (h *Handler) deleteIRR(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteInventoryRequest(r.Context(), id); err != nil {
		h.fail(w, "delete inventory request", err, slog.Int64("id", id))
		return
	}
	httpx.OKWithMessage(w, nil, "Inventory request deleted")
}

func (h *Handler) proceedIRR(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	rpq, err := h.service.ProceedToQuotation(r.Context(), id)
	if err != nil {
		h.fail(w, "proceed to quotation", err, slog.Int64("id", id))
		return
	}
	httpx.Created(w, ViewRPQ(rpq))
}

func (h *Handler) listRPQs(w http.ResponseWriter, r *http.Request) {
	rpqs, err := h.service.ListQuotationRequests(r.Context())
	if err != nil {
		h.listFailed(w, "quotations", err)
		return
	}
	out := make([]QuotationView, len(rpqs))
	for i, rpq := range rpqs {
		out[i] = ViewRPQ(rpq)
	}
	httpx.OK(w, out)
}

func (h *Handler) createRPQ(w http.ResponseWriter, r *http.Request) {
	var req rpqRequest
	if !h.decode(w, r, &req) {
		return
	}
	rpq, err := h.service.CreateQuotationRequest(r.Context(), req.input())
	if err != nil {
		h.fail(w, "create quotation", err)
		return
	}
	httpx.Created(w, ViewRPQ(rpq))
}

func (h *Handler) getRPQ(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	rpq, err := h.service.GetQuotationRequest(r.Context(), id)
	if err != nil {
		h.fail(w, "get quotation", err)
		return
	}
	httpx.OK(w, ViewRPQ(rpq))
}

func (h *Handler) updateRPQ(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req rpqPatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	rpq, err := h.service.UpdateQuotationRequest(r.Context(), id, req.patch())
	if err != nil {
		h.fail(w, "update quotation", err, slog.Int64("id", id))
		return
	}
	httpx.OK(w, ViewRPQ(rpq))
}

func (h *Handler) deleteRPQ(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteQuotationRequest(r.Context(), id); err != nil {
		h.fail(w, "delete quotation", err, slog.Int64("id", id))
		return
	}
	httpx.OKWithMessage(w, nil, "Quotation and its inventory request deleted")
}

func (h *Handler) confirmRPQ(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	po, err := h.service.ConfirmQuotation(r.Context(), id)
	if err != nil {
		h.fail(w, "confirm quotation", err, slog.Int64("id", id))
		return
	}
	httpx.Created(w, ViewPO(po))
}

func (h *Handler) attachDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	upload, cleanup, ok := h.upload(w, r)
	defer cleanup()
	if !ok {
		return
	}
	kind := DocumentKind(strings.TrimSpace(r.FormValue("kind")))
	rpq, err := h.service.AttachQuotationDocument(r.Context(), id, kind, upload)
	if err != nil {
		h.fail(w, "attach document", err, slog.Int64("id", id))
		return
	}
	httpx.OK(w, ViewRPQ(rpq))
}

func (h *Handler) removeDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	rpq, err := h.service.RemoveQuotationDocument(r.Context(), id, DocumentKind(chi.URLParam(r, "kind")))
	if err != nil {
		h.fail(w, "remove document", err, slog.Int64("id", id))
		return
	}
	httpx.OK(w, ViewRPQ(rpq))
}

func (h *Handler) listPOs(w http.ResponseWriter, r *http.Request) {
	pos, err := h.service.ListPurchaseOrders(r.Context())
	if err != nil {
		h.listFailed(w, "purchase orders", err)
		return
	}
	out := make([]PurchaseOrderView, len(pos))
	for i, po := range pos {
		out[i] = ViewPO(po)
	}
	httpx.OK(w, out)
}

func (h *Handler) getPO(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	detail, err := h.service.GetPurchaseOrderDetail(r.Context(), id)
	if err != nil {
		h.fail(w, "get purchase order", err)
		return
	}
	httpx.OK(w, detail)
}

func (h *Handler) updatePricing(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req pricingRequest
	if !h.decode(w, r, &req) {
		return
	}
	po, err := h.service.UpdatePurchaseOrderPricing(r.Context(), id, req.Items)
	if err != nil {
		h.fail(w, "update purchase order pricing", err, slog.Int64("id", id))
		return
	}
	httpx.OK(w, ViewPO(po))
}

func (h *Handler) submitPO(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	po, err := h.service.SubmitPurchaseOrder(r.Context(), id)
	if err != nil {
		h.fail(w, "submit purchase order", err, slog.Int64("id", id))
		return
	}
	httpx.OKWithMessage(w, ViewPO(po), "Purchase order submitted")
}

func (h *Handler) uploadPOFile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	upload, cleanup, ok := h.upload(w, r)
	defer cleanup()
	if !ok {
		return
	}
	po, err := h.service.UploadPurchaseOrderFile(r.Context(), id, upload)
	if err != nil {
		h.fail(w, "upload purchase order file", err, slog.Int64("id", id))
		return
	}
	httpx.OK(w, ViewPO(po))
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	ledger, err := h.service.PaymentLedger(r.Context(), id)
	if err != nil {
		h.logger.Error("list payments", slog.Any("error", err), slog.Int64("id", id))
		if errors.Is(err, ErrNotFound) || errors.Is(err, httpx.ErrUnauthorized) {
			httpx.RespondError(w, err)
			return
		}
		httpx.OKWithMessage(w, PaymentLedger{Entries: []LedgerEntry{}}, "Failed to load payments: "+httpx.MessageFor(err))
		return
	}
	httpx.OK(w, ledger)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	receipt, err := h.service.RecordPayment(r.Context(), id, req.input(r.Header.Get("Idempotency-Key")))
	if err != nil {
		h.fail(w, "record payment", err, slog.Int64("id", id))
		return
	}
	httpx.Created(w, receipt)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		httpx.RespondError(w, validationProblems(err))
		return false
	}
	return true
}

func (h *Handler) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error, attrs ...any) {
	status := httpx.StatusFor(err)
	args := append([]any{slog.Any("error", err), slog.Int("status", status)}, attrs...)
	if status >= http.StatusInternalServerError {
		h.logger.Error(op, args...)
	} else {
		h.logger.Info(op, args...)
	}
	httpx.RespondError(w, err)
}

// listFailed keeps list screens renderable when the backend is unavailable.
func (h *Handler) listFailed(w http.ResponseWriter, what string, err error) {
	h.logger.Error("list "+what, slog.Any("error", err))
	if errors.Is(err, httpx.ErrUnauthorized) {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKWithMessage(w, []struct{}{}, "Failed to load "+what+": "+httpx.MessageFor(err))
}
