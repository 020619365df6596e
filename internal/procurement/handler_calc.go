package procurement

import (
	"errors"
	"net/http"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/httpx"
)

func (h *Handler) calcAllocation(w http.ResponseWriter, r *http.Request) {
	var req allocationRequest
	if !h.decode(w, r, &req) {
		return
	}
	httpx.OK(w, Allocate(NormalizeItems(lineItems(req.Items)), req.InitialPaymentPercent))
}

func (h *Handler) calcPaymentCheck(w http.ResponseWriter, r *http.Request) {
	var req paymentCheckRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.NewPayment.IsNegative() {
		httpx.RespondError(w, invalid("newPayment cannot be negative"))
		return
	}
	if req.PurchaseOrderID > 0 {
		check, err := h.service.PreviewPayment(r.Context(), req.PurchaseOrderID, req.NewPayment)
		if err != nil {
			h.fail(w, "preview payment", err)
			return
		}
		httpx.OK(w, check)
		return
	}
	httpx.OK(w, CheckPayment(req.TotalAmount, req.TotalPaid, req.NewPayment))
}

func (h *Handler) calcPriceEntry(w http.ResponseWriter, r *http.Request) {
	var req priceEntryRequest
	if !h.decode(w, r, &req) {
		return
	}
	entry := NewPriceEntry(req.Value)
	results := make([]string, len(req.Keys))
	for i, key := range req.Keys {
		results[i] = entry.Press(key).String()
	}
	httpx.OK(w, priceEntryResponse{Value: entry.String(), Cents: entry.Cents(), Results: results})
}

func (h *Handler) calcAddLineItem(w http.ResponseWriter, r *http.Request) {
	var req lineItemAddRequest
	if !h.decode(w, r, &req) {
		return
	}
	items, err := AddLineItem(req.Items, req.Item.lineItem())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, items)
}

// upload reads the "file" part of a bounded multipart body.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) (Upload, func(), bool) {
	if r.ContentLength > h.uploadMax {
		httpx.Fail(w, http.StatusRequestEntityTooLarge, "file is too large")
		return Upload{}, func() {}, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMax)
	if err := r.ParseMultipartForm(h.uploadMax); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Fail(w, http.StatusRequestEntityTooLarge, "file is too large")
			return Upload{}, func() {}, false
		}
		httpx.RespondError(w, invalid("multipart form with a file is required"))
		return Upload{}, func() {}, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		_ = r.MultipartForm.RemoveAll()
		httpx.RespondError(w, invalid("file is required"))
		return Upload{}, func() {}, false
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	cleanup := func() {
		_ = file.Close()
		_ = r.MultipartForm.RemoveAll()
	}
	return Upload{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, cleanup, true
}
