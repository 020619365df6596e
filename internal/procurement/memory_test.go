package procurement

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/catalog"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/events"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/shared"
)

// memoryRepo is an in-memory backend. Entries in fail make the named method return that error.
type memoryRepo struct {
	mu       sync.Mutex
	nextID   int64
	irrs     map[int64]InventoryRequest
	rpqs     map[int64]QuotationRequest
	pos      map[int64]PurchaseOrder
	payments map[int64][]Payment
	files    []string
	fail     map[string]error
	batches  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		irrs:     make(map[int64]InventoryRequest),
		rpqs:     make(map[int64]QuotationRequest),
		pos:      make(map[int64]PurchaseOrder),
		payments: make(map[int64][]Payment),
		fail:     make(map[string]error),
	}
}

func (m *memoryRepo) failing(method string) error {
	return m.fail[method]
}

func (m *memoryRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryRepo) ListInventoryRequests(context.Context) ([]InventoryRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("ListInventoryRequests"); err != nil {
		return nil, err
	}
	out := make([]InventoryRequest, 0, len(m.irrs))
	for _, irr := range m.irrs {
		out = append(out, irr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRepo) GetInventoryRequest(_ context.Context, id int64) (InventoryRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	irr, ok := m.irrs[id]
	if !ok {
		return InventoryRequest{}, fmt.Errorf("inventory request %d: %w", id, ErrNotFound)
	}
	return irr, nil
}

func (m *memoryRepo) CreateInventoryRequest(_ context.Context, irr InventoryRequest) (InventoryRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("CreateInventoryRequest"); err != nil {
		return InventoryRequest{}, err
	}
	irr.ID = m.id()
	irr.CreatedAt = time.Now()
	m.irrs[irr.ID] = irr
	return irr, nil
}

func (m *memoryRepo) CreateInventoryRequests(_ context.Context, irrs []InventoryRequest) ([]InventoryRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("CreateInventoryRequests"); err != nil {
		return nil, err
	}
	m.batches++
	out := make([]InventoryRequest, len(irrs))
	for i, irr := range irrs {
		irr.ID = m.id()
		m.irrs[irr.ID] = irr
		out[i] = irr
	}
	return out, nil
}

func (m *memoryRepo) UpdateInventoryRequest(_ context.Context, irr InventoryRequest) (InventoryRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.irrs[irr.ID]; !ok {
		return InventoryRequest{}, ErrNotFound
	}
	m.irrs[irr.ID] = irr
	return irr, nil
}

func (m *memoryRepo) SetInventoryRequestStatus(_ context.Context, id int64, status IRRStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("SetInventoryRequestStatus"); err != nil {
		return err
	}
	irr, ok := m.irrs[id]
	if !ok {
		return ErrNotFound
	}
	irr.Status = status
	m.irrs[id] = irr
	return nil
}

func (m *memoryRepo) DeleteInventoryRequest(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("DeleteInventoryRequest"); err != nil {
		return err
	}
	if _, ok := m.irrs[id]; !ok {
		return fmt.Errorf("inventory request %d: %w", id, ErrNotFound)
	}
	delete(m.irrs, id)
	return nil
}

func (m *memoryRepo) ListQuotationRequests(context.Context) ([]QuotationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]QuotationRequest, 0, len(m.rpqs))
	for _, rpq := range m.rpqs {
		out = append(out, rpq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRepo) GetQuotationRequest(_ context.Context, id int64) (QuotationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rpq, ok := m.rpqs[id]
	if !ok {
		return QuotationRequest{}, fmt.Errorf("quotation %d: %w", id, ErrNotFound)
	}
	return rpq, nil
}

func (m *memoryRepo) CreateQuotationRequest(_ context.Context, rpq QuotationRequest) (QuotationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("CreateQuotationRequest"); err != nil {
		return QuotationRequest{}, err
	}
	rpq.ID = m.id()
	m.rpqs[rpq.ID] = rpq
	return rpq, nil
}

func (m *memoryRepo) UpdateQuotationRequest(_ context.Context, rpq QuotationRequest) (QuotationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rpqs[rpq.ID]; !ok {
		return QuotationRequest{}, ErrNotFound
	}
	m.rpqs[rpq.ID] = rpq
	return rpq, nil
}

func (m *memoryRepo) SetQuotationStatus(_ context.Context, id int64, status RPQStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("SetQuotationStatus"); err != nil {
		return err
	}
	rpq, ok := m.rpqs[id]
	if !ok {
		return ErrNotFound
	}
	rpq.Status = status
	m.rpqs[id] = rpq
	return nil
}

func (m *memoryRepo) SetQuotationDocuments(_ context.Context, id int64, docs map[DocumentKind]Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rpq, ok := m.rpqs[id]
	if !ok {
		return ErrNotFound
	}
	rpq.Documents = docs
	m.rpqs[id] = rpq
	return nil
}

func (m *memoryRepo) DeleteQuotationRequest(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rpqs[id]; !ok {
		return ErrNotFound
	}
	delete(m.rpqs, id)
	return nil
}

func (m *memoryRepo) ListPurchaseOrders(context.Context) ([]PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PurchaseOrder, 0, len(m.pos))
	for _, po := range m.pos {
		out = append(out, po)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRepo) GetPurchaseOrder(_ context.Context, id int64) (PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("GetPurchaseOrder"); err != nil {
		return PurchaseOrder{}, err
	}
	po, ok := m.pos[id]
	if !ok {
		return PurchaseOrder{}, fmt.Errorf("purchase order %d: %w", id, ErrNotFound)
	}
	return po, nil
}

func (m *memoryRepo) UpdatePurchaseOrder(_ context.Context, po PurchaseOrder) (PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pos[po.ID]; !ok {
		return PurchaseOrder{}, ErrNotFound
	}
	m.pos[po.ID] = po
	return po, nil
}

func (m *memoryRepo) CreatePurchaseOrderFromQuotation(_ context.Context, rpqID int64) (PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("CreatePurchaseOrderFromQuotation"); err != nil {
		return PurchaseOrder{}, err
	}
	rpq, ok := m.rpqs[rpqID]
	if !ok {
		return PurchaseOrder{}, ErrNotFound
	}
	po := PurchaseOrder{
		ID:                 m.id(),
		ControlNumber:      fmt.Sprintf("PO-%d", rpqID),
		QuotationRequestID: rpqID,
		SupplierName:       rpq.SupplierName,
		SupplierInfo:       rpq.SupplierInfo,
		Items:              rpq.Items,
		TotalAmount:        rpq.GrandTotal(),
		RemainingBalance:   rpq.GrandTotal(),
		PaymentStatus:      PaymentPending,
	}
	m.pos[po.ID] = po
	return po, nil
}

func (m *memoryRepo) SubmitPurchaseOrder(_ context.Context, id int64) (PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	po, ok := m.pos[id]
	if !ok {
		return PurchaseOrder{}, ErrNotFound
	}
	po.IsSubmitted = true
	now := time.Now()
	po.SubmittedAt = &now
	m.pos[id] = po
	return po, nil
}

func (m *memoryRepo) UploadPurchaseOrderFile(_ context.Context, id int64, file Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	po, ok := m.pos[id]
	if !ok {
		return ErrNotFound
	}
	po.UploadedFileURL = "/uploads/documents/" + file.Name
	m.pos[id] = po
	return nil
}

func (m *memoryRepo) CreatePayment(_ context.Context, p Payment) (Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("CreatePayment"); err != nil {
		return Payment{}, err
	}
	po, ok := m.pos[p.PurchaseOrderID]
	if !ok {
		return Payment{}, ErrNotFound
	}
	p.ID = m.id()
	m.payments[po.ID] = append(m.payments[po.ID], p)
	po.TotalPaid = SumPaid(m.payments[po.ID])
	po.RemainingBalance = decimal.Max(po.TotalAmount.Sub(po.TotalPaid), decimal.Zero)
	po.PaymentStatus = PaymentStatusFor(po.TotalAmount, po.TotalPaid)
	m.pos[po.ID] = po
	return p, nil
}

func (m *memoryRepo) ListPayments(_ context.Context, poID int64) ([]Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Payment(nil), m.payments[poID]...), nil
}

func (m *memoryRepo) UploadFile(_ context.Context, file Upload) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failing("UploadFile"); err != nil {
		return Document{}, err
	}
	if _, err := io.Copy(io.Discard, file.Body); err != nil {
		return Document{}, err
	}
	m.files = append(m.files, file.Name)
	return Document{URL: "/uploads/documents/" + file.Name, Name: file.Name, ContentType: file.ContentType}, nil
}

type memorySuppliers map[int64]catalog.Supplier

func (m memorySuppliers) Supplier(_ context.Context, id int64) (catalog.Supplier, error) {
	s, ok := m[id]
	if !ok {
		return catalog.Supplier{}, catalog.ErrSupplierNotFound
	}
	return s, nil
}

type memoryAudit struct {
	mu   sync.Mutex
	logs []shared.AuditLog
}

func (m *memoryAudit) Record(_ context.Context, log shared.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *memoryAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.logs))
	for i, l := range m.logs {
		out[i] = l.Action
	}
	return out
}

type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func (m *memoryIdempotency) CheckAndInsert(_ context.Context, key, module string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys == nil {
		m.keys = make(map[string]string)
	}
	if _, ok := m.keys[key]; ok {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = module
	return nil
}

func (m *memoryIdempotency) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) Publish(_ context.Context, evt events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordedEvents) topics() []events.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Topic, len(r.events))
	for i, e := range r.events {
		out[i] = e.Topic()
	}
	return out
}
