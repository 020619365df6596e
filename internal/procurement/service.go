package procurement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/catalog"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/events"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/shared"
)

const paymentIdempotencyModule = "procurement.payment"

// Service drives the IRR -> RPQ -> PO -> payment workflow.
type Service struct {
	repo      RepositoryPort
	suppliers SupplierDirectory
	audit     AuditPort
	idem      IdempotencyPort
	locks     LockPort
	events    Publisher
	logger    *slog.Logger
	clock     func() time.Time
}

// NewService constructs Service.
func NewService(repo RepositoryPort, suppliers SupplierDirectory, deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:      repo,
		suppliers: suppliers,
		audit:     deps.Audit,
		idem:      deps.Idempotency,
		locks:     deps.Locks,
		events:    deps.Events,
		logger:    logger,
		clock:     clock,
	}
}

// InventoryRequestInput is the editable content of an inventory request.
type InventoryRequestInput struct {
	SupplierID int64      `json:"supplierId"`
	Requestor  string     `json:"requestor"`
	Items      []LineItem `json:"items"`
	Remarks    string     `json:"remarks"`
}

func (in InventoryRequestInput) problems() []string {
	var problems []string
	if in.SupplierID <= 0 {
		problems = append(problems, "supplier is required")
	}
	return append(problems, ValidateItems(in.Items)...)
}

// ListInventoryRequests returns every inventory request.
func (s *Service) ListInventoryRequests(ctx context.Context) ([]InventoryRequest, error) {
	return s.repo.ListInventoryRequests(ctx)
}

// GetInventoryRequest loads one inventory request.
func (s *Service) GetInventoryRequest(ctx context.Context, id int64) (InventoryRequest, error) {
	return s.repo.GetInventoryRequest(ctx, id)
}

// CreateInventoryRequest validates input, assigns the next IRR number and persists a PENDING request.
func (s *Service) CreateInventoryRequest(ctx context.Context, in InventoryRequestInput) (InventoryRequest, error) {
	created, err := s.CreateInventoryRequests(ctx, []InventoryRequestInput{in})
	if err != nil {
		return InventoryRequest{}, err
	}
	return created[0], nil
}

// CreateInventoryRequests creates several requests with consecutive numbers.
// Every input is validated before anything is sent to the backend.
func (s *Service) CreateInventoryRequests(ctx context.Context, inputs []InventoryRequestInput) ([]InventoryRequest, error) {
	if len(inputs) == 0 {
		return nil, invalid("at least one request is required")
	}
	var problems []string
	for i, in := range inputs {
		for _, p := range in.problems() {
			if len(inputs) > 1 {
				p = fmt.Sprintf("request %d: %s", i+1, p)
			}
			problems = append(problems, p)
		}
	}
	if len(problems) > 0 {
		return nil, invalid(problems...)
	}

	names := make(map[int64]string)
	for _, in := range inputs {
		if _, ok := names[in.SupplierID]; ok {
			continue
		}
		supplier, err := s.supplier(ctx, in.SupplierID)
		if err != nil {
			return nil, err
		}
		names[in.SupplierID] = supplier.Name
	}

	existing, err := s.repo.ListInventoryRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("number inventory request: %w", err)
	}
	numbers := ControlNumbers(PrefixIRR, s.clock().Year(), irrNumbers(existing), len(inputs))

	actorName := s.actorName(ctx)
	irrs := make([]InventoryRequest, len(inputs))
	for i, in := range inputs {
		requestor := strings.TrimSpace(in.Requestor)
		if requestor == "" {
			requestor = actorName
		}
		irrs[i] = InventoryRequest{
			ControlNumber: numbers[i],
			SupplierID:    in.SupplierID,
			SupplierName:  names[in.SupplierID],
			Requestor:     requestor,
			Items:         NormalizeItems(in.Items),
			Remarks:       strings.TrimSpace(in.Remarks),
			Status:        IRRPending,
		}
	}

	var created []InventoryRequest
	if len(irrs) == 1 {
		one, err := s.repo.CreateInventoryRequest(ctx, irrs[0])
		if err != nil {
			return nil, err
		}
		created = []InventoryRequest{one}
	} else {
		created, err = s.repo.CreateInventoryRequests(ctx, irrs)
		if err != nil {
			return nil, err
		}
	}
	for i := range created {
		if created[i].ControlNumber == "" && i < len(irrs) {
			created[i].ControlNumber = irrs[i].ControlNumber
		}
		s.record(ctx, "IRR_CREATED", "inventory_request", created[i].ID, map[string]any{"control_number": created[i].ControlNumber})
		s.publish(ctx, InventoryRequestChanged{ID: created[i].ID, ControlNumber: created[i].ControlNumber, Change: ChangeCreated, Status: IRRPending})
	}
	return created, nil
}

// UpdateInventoryRequest replaces the content of a PENDING request.
func (s *Service) UpdateInventoryRequest(ctx context.Context, id int64, in InventoryRequestInput) (InventoryRequest, error) {
	if problems := in.problems(); len(problems) > 0 {
		return InventoryRequest{}, invalid(problems...)
	}
	release, err := s.lock(ctx, "irr", id)
	if err != nil {
		return InventoryRequest{}, err
	}
	defer release()

	irr, err := s.repo.GetInventoryRequest(ctx, id)
	if err != nil {
		return InventoryRequest{}, err
	}
	if !irr.Actions().CanEdit {
		return InventoryRequest{}, irrStateError(irr, "edit")
	}
	if in.SupplierID != irr.SupplierID {
		supplier, err := s.supplier(ctx, in.SupplierID)
		if err != nil {
			return InventoryRequest{}, err
		}
		irr.SupplierName = supplier.Name
	}
	irr.SupplierID = in.SupplierID
	irr.Items = NormalizeItems(in.Items)
	irr.Remarks = strings.TrimSpace(in.Remarks)
	if r := strings.TrimSpace(in.Requestor); r != "" {
		irr.Requestor = r
	}

	updated, err := s.repo.UpdateInventoryRequest(ctx, irr)
	if err != nil {
		return InventoryRequest{}, err
	}
	s.record(ctx, "IRR_UPDATED", "inventory_request", id, map[string]any{"items": len(irr.Items)})
	s.publish(ctx, InventoryRequestChanged{ID: id, ControlNumber: irr.ControlNumber, Change: ChangeUpdated, Status: irr.Status})
	return updated, nil
}

// DeleteInventoryRequest removes a PENDING request.
func (s *Service) DeleteInventoryRequest(ctx context.Context, id int64) error {
	release, err := s.lock(ctx, "irr", id)
	if err != nil {
		return err
	}
	defer release()

	irr, err := s.repo.GetInventoryRequest(ctx, id)
	if err != nil {
		return err
	}
	if !irr.Actions().CanDelete {
		return irrStateError(irr, "delete")
	}
	if err := s.repo.DeleteInventoryRequest(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "IRR_DELETED", "inventory_request", id, map[string]any{"control_number": irr.ControlNumber})
	s.publish(ctx, InventoryRequestChanged{ID: id, ControlNumber: irr.ControlNumber, Change: ChangeDeleted})
	return nil
}

// ProceedToQuotation creates a DRAFT quotation from a PENDING request and then
// marks the request as proceeded. When quotation creation fails the request is
// untouched. When the status patch fails the quotation stays and a
// *PartialTransitionError is returned.
func (s *Service) ProceedToQuotation(ctx context.Context, id int64) (QuotationRequest, error) {
	release, err := s.lock(ctx, "irr", id)
	if err != nil {
		return QuotationRequest{}, err
	}
	defer release()

	irr, err := s.repo.GetInventoryRequest(ctx, id)
	if err != nil {
		return QuotationRequest{}, err
	}
	if !irr.Actions().CanProceed {
		return QuotationRequest{}, irrStateError(irr, "proceed")
	}
	if problems := ValidateItems(irr.Items); len(problems) > 0 {
		return QuotationRequest{}, invalid(problems...)
	}
	supplier, err := s.supplier(ctx, irr.SupplierID)
	if err != nil {
		return QuotationRequest{}, err
	}
	existing, err := s.repo.ListQuotationRequests(ctx)
	if err != nil {
		return QuotationRequest{}, fmt.Errorf("number quotation request: %w", err)
	}

	draft := QuotationRequest{
		ControlNumber: NextControlNumber(PrefixRPQ, s.clock().Year(), rpqNumbers(existing)),
		IRRID:         irr.ID,
		SupplierID:    supplier.ID,
		SupplierName:  supplier.Name,
		SupplierInfo:  SnapshotSupplier(supplier),
		Items:         NormalizeItems(irr.Items),
		Status:        RPQDraft,
	}
	Allocate(draft.Items, Percent{}).Apply(&draft)

	rpq, err := s.repo.CreateQuotationRequest(ctx, draft)
	if err != nil {
		return QuotationRequest{}, err
	}
	if rpq.ControlNumber == "" {
		rpq.ControlNumber = draft.ControlNumber
	}
	s.publish(ctx, QuotationChanged{ID: rpq.ID, ControlNumber: rpq.ControlNumber, Change: ChangeCreated, Status: RPQDraft})

	if err := s.repo.SetInventoryRequestStatus(ctx, irr.ID, IRRProceededToRPQ); err != nil {
		return rpq, s.partial(ctx, &PartialTransitionError{
			Transition: "proceed to quotation",
			Completed:  "quotation " + rpq.ControlNumber + " created",
			Failed:     "marking " + irr.ControlNumber + " as proceeded",
			Record:     ViewRPQ(rpq),
			Err:        err,
		}, "IRR_PROCEED_INCOMPLETE", "inventory_request", irr.ID)
	}
	s.record(ctx, "IRR_PROCEEDED", "inventory_request", irr.ID, map[string]any{"quotation_id": rpq.ID, "quotation": rpq.ControlNumber})
	s.publish(ctx, InventoryRequestChanged{ID: irr.ID, ControlNumber: irr.ControlNumber, Change: ChangeProceeded, Status: IRRProceededToRPQ})
	return rpq, nil
}

func (s *Service) supplier(ctx context.Context, id int64) (catalog.Supplier, error) {
	if s.suppliers == nil {
		return catalog.Supplier{ID: id}, nil
	}
	supplier, err := s.suppliers.Supplier(ctx, id)
	if errors.Is(err, catalog.ErrSupplierNotFound) {
		return catalog.Supplier{}, invalid(fmt.Sprintf("supplier %d does not exist", id))
	}
	if err != nil {
		return catalog.Supplier{}, err
	}
	if supplier.ID == 0 {
		supplier.ID = id
	}
	return supplier, nil
}

func (s *Service) lock(ctx context.Context, entity string, id int64) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}
	return s.locks.Acquire(ctx, shared.RecordLockKey(entity, id))
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if s.events != nil {
		s.events.Publish(ctx, evt)
	}
}

func (s *Service) record(ctx context.Context, action, entity string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   entity,
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
		At:       s.clock(),
	})
	if err != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.Int64("id", id), slog.Any("error", err))
	}
}

// partial logs, audits and announces an incomplete transition, then returns it.
func (s *Service) partial(ctx context.Context, perr *PartialTransitionError, action, entity string, id int64) error {
	s.logger.Error("workflow transition incomplete",
		slog.String("transition", perr.Transition),
		slog.String("completed", perr.Completed),
		slog.String("failed", perr.Failed),
		slog.Int64("id", id),
		slog.Any("error", perr.Err))
	s.record(ctx, action, entity, id, map[string]any{
		"completed": perr.Completed,
		"failed":    perr.Failed,
		"error":     perr.Err.Error(),
	})
	s.publish(ctx, TransitionIncomplete{
		Transition: perr.Transition,
		Entity:     entity,
		EntityID:   id,
		Completed:  perr.Completed,
		Failed:     perr.Failed,
		Error:      perr.Err.Error(),
	})
	return perr
}

func (s *Service) actorName(ctx context.Context) string {
	if actor, ok := shared.ActorFromContext(ctx); ok {
		return actor.DisplayName()
	}
	return ""
}

func (s *Service) today() Date {
	return NewDate(s.clock())
}

func irrStateError(irr InventoryRequest, action string) error {
	return &StateError{Entity: "inventory request", ControlNumber: irr.ControlNumber, Status: string(irr.Status), Action: action}
}

func irrNumbers(irrs []InventoryRequest) []string {
	out := make([]string, len(irrs))
	for i, irr := range irrs {
		out[i] = irr.ControlNumber
	}
	return out
}

func rpqNumbers(rpqs []QuotationRequest) []string {
	out := make([]string, len(rpqs))
	for i, rpq := range rpqs {
		out[i] = rpq.ControlNumber
	}
	return out
}
