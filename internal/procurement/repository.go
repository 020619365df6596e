package procurement

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/backend"
)

// Repository implements RepositoryPort over the backend REST API.
type Repository struct {
	client *backend.Client
}

// NewRepository builds a Repository.
func NewRepository(client *backend.Client) *Repository {
	return &Repository{client: client}
}

type irrPayload struct {
	ControlNumber string     `json:"controlNumber"`
	SupplierID    int64      `json:"supplierId"`
	SupplierName  string     `json:"supplierName,omitempty"`
	Requestor     string     `json:"requestor"`
	Items         []LineItem `json:"items"`
	Remarks       string     `json:"remarks"`
	Status        IRRStatus  `json:"status"`
}

func irrBody(irr InventoryRequest) irrPayload {
	return irrPayload{
		ControlNumber: irr.ControlNumber,
		SupplierID:    irr.SupplierID,
		SupplierName:  irr.SupplierName,
		Requestor:     irr.Requestor,
		Items:         irr.Items,
		Remarks:       irr.Remarks,
		Status:        irr.Status,
	}
}

type rpqPayload struct {
	ControlNumber         string                    `json:"controlNumber"`
	IRRID                 *int64                    `json:"irrId,omitempty"`
	SupplierID            int64                     `json:"supplierId"`
	SupplierName          string                    `json:"supplierName"`
	SupplierInfo          SupplierInfo              `json:"supplierInfo"`
	Items                 []LineItem                `json:"items"`
	MOQ                   int                       `json:"moq"`
	InitialPaymentPercent Percent                   `json:"initialPaymentPercent"`
	FinalPaymentPercent   Percent                   `json:"finalPaymentPercent"`
	InitialPaymentAmount  decimal.Decimal           `json:"initialPaymentAmount"`
	FinalPaymentAmount    decimal.Decimal           `json:"finalPaymentAmount"`
	ProductionLeadTime    string                    `json:"productionLeadTime"`
	ProductionDetails     string                    `json:"productionDetails"`
	PaymentInstruction    string                    `json:"paymentInstruction"`
	Documents             map[DocumentKind]Document `json:"documents,omitempty"`
	Status                RPQStatus                 `json:"status"`
}

func rpqBody(q QuotationRequest) rpqPayload {
	p := rpqPayload{
		ControlNumber:         q.ControlNumber,
		SupplierID:            q.SupplierID,
		SupplierName:          q.SupplierName,
		SupplierInfo:          q.SupplierInfo,
		Items:                 q.Items,
		MOQ:                   q.MOQ,
		InitialPaymentPercent: q.InitialPaymentPercent,
		FinalPaymentPercent:   q.FinalPaymentPercent,
		InitialPaymentAmount:  q.InitialPaymentAmount,
		FinalPaymentAmount:    q.FinalPaymentAmount,
		ProductionLeadTime:    q.ProductionLeadTime,
		ProductionDetails:     q.ProductionDetails,
		PaymentInstruction:    q.PaymentInstruction,
		Documents:             q.Documents,
		Status:                q.Status,
	}
	if q.IRRID > 0 {
		id := q.IRRID
		p.IRRID = &id
	}
	return p
}

type poPricingPayload struct {
	Items            []LineItem      `json:"items"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
}

type paymentPayload struct {
	PurchaseOrderID     int64           `json:"purchaseOrderId"`
	PaymentNumber       string          `json:"paymentNumber"`
	BankName            string          `json:"bankName"`
	ReferenceNumber     string          `json:"referenceNumber"`
	PaymentDate         Date            `json:"paymentDate"`
	ProductDollarAmount decimal.Decimal `json:"productDollarAmount"`
	ProductPesoAmount   decimal.Decimal `json:"productPesoAmount"`
	ProcessingFeeDollar decimal.Decimal `json:"processingFeeDollar"`
	ProcessingFeePeso   decimal.Decimal `json:"processingFeePeso"`
	TotalDollar         decimal.Decimal `json:"totalDollar"`
	TotalPeso           decimal.Decimal `json:"totalPeso"`
	PercentageOfTotal   decimal.Decimal `json:"percentageOfTotal"`
	Remarks             string          `json:"remarks"`
}

func idPath(base string, id int64, rest ...string) string {
	parts := append([]string{base, strconv.FormatInt(id, 10)}, rest...)
	return strings.Join(parts, "/")
}

func notFound(err error, entity string, id int64) error {
	if errors.Is(err, backend.ErrNotFound) {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}
	return err
}

// ListInventoryRequests implements RepositoryPort.
func (r *Repository) ListInventoryRequests(ctx context.Context) ([]InventoryRequest, error) {
	var out []InventoryRequest
	if err := r.client.Get(ctx, "inventory-requests", nil, &out); err != nil {
		return nil, fmt.Errorf("list inventory requests: %w", err)
	}
	return out, nil
}

// GetInventoryRequest implements RepositoryPort.
func (r *Repository) GetInventoryRequest(ctx context.Context, id int64) (InventoryRequest, error) {
	var out InventoryRequest
	if err := r.client.Get(ctx, idPath("inventory-requests", id), nil, &out); err != nil {
		return InventoryRequest{}, notFound(err, "inventory request", id)
	}
	return out, nil
}

// CreateInventoryRequest implements RepositoryPort.
func (r *Repository) CreateInventoryRequest(ctx context.Context, irr InventoryRequest) (InventoryRequest, error) {
	var out InventoryRequest
	if err := r.client.Post(ctx, "inventory-requests", irrBody(irr), &out); err != nil {
		return InventoryRequest{}, fmt.Errorf("create inventory request: %w", err)
	}
	return out, nil
}

// CreateInventoryRequests implements RepositoryPort.
func (r *Repository) CreateInventoryRequests(ctx context.Context, irrs []InventoryRequest) ([]InventoryRequest, error) {
	body := struct {
		Requests []irrPayload `json:"requests"`
	}{Requests: make([]irrPayload, len(irrs))}
	for i, irr := range irrs {
		body.Requests[i] = irrBody(irr)
	}
	var out []InventoryRequest
	if err := r.client.Post(ctx, "inventory-requests/batch", body, &out); err != nil {
		return nil, fmt.Errorf("create inventory requests: %w", err)
	}
	return out, nil
}

// UpdateInventoryRequest implements RepositoryPort.
func (r *Repository) UpdateInventoryRequest(ctx context.Context, irr InventoryRequest) (InventoryRequest, error) {
	var out InventoryRequest
	if err := r.client.Put(ctx, idPath("inventory-requests", irr.ID), irrBody(irr), &out); err != nil {
		return InventoryRequest{}, notFound(err, "inventory request", irr.ID)
	}
	return out, nil
}

// SetInventoryRequestStatus implements RepositoryPort.
func (r *Repository) SetInventoryRequestStatus(ctx context.Context, id int64, status IRRStatus) error {
	err := r.client.Patch(ctx, idPath("inventory-requests", id), map[string]any{"status": status}, nil)
	return notFound(err, "inventory request", id)
}

// DeleteInventoryRequest implements RepositoryPort.
func (r *Repository) DeleteInventoryRequest(ctx context.Context, id int64) error {
	return notFound(r.client.Delete(ctx, idPath("inventory-requests", id), nil), "inventory request", id)
}

// ListQuotationRequests implements RepositoryPort.
func (r *Repository) ListQuotationRequests(ctx context.Context) ([]QuotationRequest, error) {
	var out []QuotationRequest
	if err := r.client.Get(ctx, "quotation-requests", nil, &out); err != nil {
		return nil, fmt.Errorf("list quotation requests: %w", err)
	}
	return out, nil
}

// GetQuotationRequest implements RepositoryPort.
func (r *Repository) GetQuotationRequest(ctx context.Context, id int64) (QuotationRequest, error) {
	var out QuotationRequest
	if err := r.client.Get(ctx, idPath("quotation-requests", id), nil, &out); err != nil {
		return QuotationRequest{}, notFound(err, "quotation request", id)
	}
	return out, nil
}

// CreateQuotationRequest implements RepositoryPort.
func (r *Repository) CreateQuotationRequest(ctx context.Context, rpq QuotationRequest) (QuotationRequest, error) {
	var out QuotationRequest
	if err := r.client.Post(ctx, "quotation-requests", rpqBody(rpq), &out); err != nil {
		return QuotationRequest{}, fmt.Errorf("create quotation request: %w", err)
	}
	return out, nil
}

// UpdateQuotationRequest implements RepositoryPort.
func (r *Repository) UpdateQuotationRequest(ctx context.Context, rpq QuotationRequest) (QuotationRequest, error) {
	var out QuotationRequest
	if err := r.client.Put(ctx, idPath("quotation-requests", rpq.ID), rpqBody(rpq), &out); err != nil {
		return QuotationRequest{}, notFound(err, "quotation request", rpq.ID)
	}
	return out, nil
}

// SetQuotationStatus implements RepositoryPort.
func (r *Repository) SetQuotationStatus(ctx context.Context, id int64, status RPQStatus) error {
	err := r.client.Patch(ctx, idPath("quotation-requests", id), map[string]any{"status": status}, nil)
	return notFound(err, "quotation request", id)
}

// SetQuotationDocuments implements RepositoryPort.
func (r *Repository) SetQuotationDocuments(ctx context.Context, id int64, docs map[DocumentKind]Document) error {
	if docs == nil {
		docs = map[DocumentKind]Document{}
	}
	err := r.client.Patch(ctx, idPath("quotation-requests", id), map[string]any{"documents": docs}, nil)
	return notFound(err, "quotation request", id)
}

// DeleteQuotationRequest implements RepositoryPort.
func (r *Repository) DeleteQuotationRequest(ctx context.Context, id int64) error {
	return notFound(r.client.Delete(ctx, idPath("quotation-requests", id), nil), "quotation request", id)
}

// ListPurchaseOrders implements RepositoryPort.
func (r *Repository) ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error) {
	var out []PurchaseOrder
	if err := r.client.Get(ctx, "purchase-orders", nil, &out); err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	return out, nil
}

// GetPurchaseOrder implements RepositoryPort.
func (r *Repository) GetPurchaseOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	var out PurchaseOrder
	if err := r.client.Get(ctx, idPath("purchase-orders", id), nil, &out); err != nil {
		return PurchaseOrder{}, notFound(err, "purchase order", id)
	}
	return out, nil
}

// UpdatePurchaseOrder implements RepositoryPort. Only pricing fields are sent.
func (r *Repository) UpdatePurchaseOrder(ctx context.Context, po PurchaseOrder) (PurchaseOrder, error) {
	body := poPricingPayload{Items: po.Items, TotalAmount: po.TotalAmount, RemainingBalance: po.RemainingBalance}
	var out PurchaseOrder
	if err := r.client.Put(ctx, idPath("purchase-orders", po.ID), body, &out); err != nil {
		return PurchaseOrder{}, notFound(err, "purchase order", po.ID)
	}
	return out, nil
}

// CreatePurchaseOrderFromQuotation implements RepositoryPort.
func (r *Repository) CreatePurchaseOrderFromQuotation(ctx context.Context, rpqID int64) (PurchaseOrder, error) {
	var out PurchaseOrder
	if err := r.client.Post(ctx, idPath("purchase-orders/from-quotation", rpqID), struct{}{}, &out); err != nil {
		return PurchaseOrder{}, notFound(err, "quotation request", rpqID)
	}
	return out, nil
}

// SubmitPurchaseOrder implements RepositoryPort.
func (r *Repository) SubmitPurchaseOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	var out PurchaseOrder
	if err := r.client.Post(ctx, idPath("purchase-orders", id, "submit"), struct{}{}, &out); err != nil {
		return PurchaseOrder{}, notFound(err, "purchase order", id)
	}
	return out, nil
}

// UploadPurchaseOrderFile implements RepositoryPort.
func (r *Repository) UploadPurchaseOrderFile(ctx context.Context, id int64, file Upload) error {
	err := r.client.Upload(ctx, idPath("purchase-orders", id, "upload"), backend.File{
		Name:        file.Name,
		ContentType: file.ContentType,
		Body:        file.Body,
	}, nil, nil)
	return notFound(err, "purchase order", id)
}

// CreatePayment implements RepositoryPort.
func (r *Repository) CreatePayment(ctx context.Context, p Payment) (Payment, error) {
	body := paymentPayload{
		PurchaseOrderID:     p.PurchaseOrderID,
		PaymentNumber:       p.PaymentNumber,
		BankName:            p.BankName,
		ReferenceNumber:     p.ReferenceNumber,
		PaymentDate:         p.PaymentDate,
		ProductDollarAmount: p.ProductDollarAmount,
		ProductPesoAmount:   p.ProductPesoAmount,
		ProcessingFeeDollar: p.ProcessingFeeDollar,
		ProcessingFeePeso:   p.ProcessingFeePeso,
		TotalDollar:         p.TotalDollar,
		TotalPeso:           p.TotalPeso,
		PercentageOfTotal:   p.PercentageOfTotal,
		Remarks:             p.Remarks,
	}
	var out Payment
	if err := r.client.Post(ctx, "payments", body, &out); err != nil {
		return Payment{}, fmt.Errorf("create payment: %w", err)
	}
	return out, nil
}

// ListPayments implements RepositoryPort.
func (r *Repository) ListPayments(ctx context.Context, poID int64) ([]Payment, error) {
	var out []Payment
	if err := r.client.Get(ctx, idPath("payments/purchase-order", poID), nil, &out); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return []Payment{}, nil
		}
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}

// UploadFile implements RepositoryPort. Images and documents go to separate endpoints.
func (r *Repository) UploadFile(ctx context.Context, file Upload) (Document, error) {
	path := "upload/document"
	if strings.HasPrefix(file.ContentType, "image/") {
		path = "upload/image"
	}
	var out struct {
		URL      string `json:"url"`
		FileName string `json:"filename"`
	}
	err := r.client.Upload(ctx, path, backend.File{Name: file.Name, ContentType: file.ContentType, Body: file.Body}, nil, &out)
	if err != nil {
		return Document{}, fmt.Errorf("upload %s: %w", file.Name, err)
	}
	if out.URL == "" {
		return Document{}, fmt.Errorf("upload %s: storage returned no url: %w", file.Name, backend.ErrUpstream)
	}
	name := file.Name
	if name == "" {
		name = out.FileName
	}
	now := time.Now().UTC()
	return Document{URL: out.URL, Name: name, ContentType: file.ContentType, UploadedAt: &now}, nil
}
