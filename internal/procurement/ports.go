package procurement

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/catalog"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/events"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/shared"
)

// RepositoryPort is the backend surface used by the workflow.
type RepositoryPort interface {
	ListInventoryRequests(ctx context.Context) ([]InventoryRequest, error)
	GetInventoryRequest(ctx context.Context, id int64) (InventoryRequest, error)
	CreateInventoryRequest(ctx context.Context, irr InventoryRequest) (InventoryRequest, error)
	CreateInventoryRequests(ctx context.Context, irrs []InventoryRequest) ([]InventoryRequest, error)
	UpdateInventoryRequest(ctx context.Context, irr InventoryRequest) (InventoryRequest, error)
	SetInventoryRequestStatus(ctx context.Context, id int64, status IRRStatus) error
	DeleteInventoryRequest(ctx context.Context, id int64) error

	ListQuotationRequests(ctx context.Context) ([]QuotationRequest, error)
	GetQuotationRequest(ctx context.Context, id int64) (QuotationRequest, error)
	CreateQuotationRequest(ctx context.Context, rpq QuotationRequest) (QuotationRequest, error)
	UpdateQuotationRequest(ctx context.Context, rpq QuotationRequest) (QuotationRequest, error)
	SetQuotationStatus(ctx context.Context, id int64, status RPQStatus) error
	SetQuotationDocuments(ctx context.Context, id int64, docs map[DocumentKind]Document) error
	DeleteQuotationRequest(ctx context.Context, id int64) error

	ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id int64) (PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, po PurchaseOrder) (PurchaseOrder, error)
	CreatePurchaseOrderFromQuotation(ctx context.Context, rpqID int64) (PurchaseOrder, error)
	SubmitPurchaseOrder(ctx context.Context, id int64) (PurchaseOrder, error)
	UploadPurchaseOrderFile(ctx context.Context, id int64, file Upload) error

	CreatePayment(ctx context.Context, p Payment) (Payment, error)
	ListPayments(ctx context.Context, poID int64) ([]Payment, error)

	UploadFile(ctx context.Context, file Upload) (Document, error)
}

// SupplierDirectory resolves current supplier details. Implementations must not serve stale data.
type SupplierDirectory interface {
	Supplier(ctx context.Context, id int64) (catalog.Supplier, error)
}

// AuditPort records workflow transitions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards payment submission against replays.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// LockPort hands out per-record action locks.
type LockPort interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Publisher delivers workflow events.
type Publisher interface {
	Publish(ctx context.Context, evt events.Event)
}

// Upload is a file received from the browser.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Dependencies are the optional collaborators of Service.
type Dependencies struct {
	Audit       AuditPort
	Idempotency IdempotencyPort
	Locks       LockPort
	Events      Publisher
	Logger      *slog.Logger
	Clock       func() time.Time
}
