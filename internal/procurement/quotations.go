package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// QuotationInput creates a quotation directly, without an inventory request.
type QuotationInput struct {
	IRRID                 int64      `json:"irrId"`
	SupplierID            int64      `json:"supplierId"`
	Items                 []LineItem `json:"items"`
	MOQ                   int        `json:"moq"`
	InitialPaymentPercent Percent    `json:"initialPaymentPercent"`
	ProductionLeadTime    string     `json:"productionLeadTime"`
	ProductionDetails     string     `json:"productionDetails"`
	PaymentInstruction    string     `json:"paymentInstruction"`
	Status                RPQStatus  `json:"status"`
}

// QuotationPatch changes selected fields of an editable quotation. Items
// replaces the whole list while ItemPatches edits individual lines.
type QuotationPatch struct {
	Items                 *[]LineItem `json:"items,omitempty"`
	ItemPatches           []ItemPatch `json:"itemPatches,omitempty"`
	MOQ                   *int        `json:"moq,omitempty"`
	InitialPaymentPercent *Percent    `json:"initialPaymentPercent,omitempty"`
	ProductionLeadTime    *string     `json:"productionLeadTime,omitempty"`
	ProductionDetails     *string     `json:"productionDetails,omitempty"`
	PaymentInstruction    *string     `json:"paymentInstruction,omitempty"`
	Status                *RPQStatus  `json:"status,omitempty"`
}

func editableStatusProblem(status RPQStatus) string {
	if status == RPQDraft || status == RPQPending {
		return ""
	}
	if status == RPQConfirmed {
		return "status CONFIRMED is reached through confirmation only"
	}
	return fmt.Sprintf("unknown status %q", status)
}

// ListQuotationRequests returns every quotation.
func (s *Service) ListQuotationRequests(ctx context.Context) ([]QuotationRequest, error) {
	return s.repo.ListQuotationRequests(ctx)
}

// GetQuotationRequest loads one quotation.
func (s *Service) GetQuotationRequest(ctx context.Context, id int64) (QuotationRequest, error) {
	return s.repo.GetQuotationRequest(ctx, id)
}

// CreateQuotationRequest numbers and stores a DRAFT or PENDING quotation with
// a fresh supplier snapshot and computed payment split.
func (s *Service) CreateQuotationRequest(ctx context.Context, in QuotationInput) (QuotationRequest, error) {
	if in.Status == "" {
		in.Status = RPQPending
	}
	var problems []string
	if in.SupplierID <= 0 {
		problems = append(problems, "supplier is required")
	}
	if in.MOQ < 0 {
		problems = append(problems, "MOQ cannot be negative")
	}
	if p := editableStatusProblem(in.Status); p != "" {
		problems = append(problems, p)
	}
	problems = append(problems, ValidateItems(in.Items)...)
	if len(problems) > 0 {
		return QuotationRequest{}, invalid(problems...)
	}

	supplier, err := s.supplier(ctx, in.SupplierID)
	if err != nil {
		return QuotationRequest{}, err
	}
	existing, err := s.repo.ListQuotationRequests(ctx)
	if err != nil {
		return QuotationRequest{}, fmt.Errorf("number quotation request: %w", err)
	}
	rpq := QuotationRequest{
		ControlNumber:      NextControlNumber(PrefixRPQ, s.clock().Year(), rpqNumbers(existing)),
		IRRID:              in.IRRID,
		SupplierID:         supplier.ID,
		SupplierName:       supplier.Name,
		SupplierInfo:       SnapshotSupplier(supplier),
		Items:              NormalizeItems(in.Items),
		MOQ:                in.MOQ,
		ProductionLeadTime: strings.TrimSpace(in.ProductionLeadTime),
		ProductionDetails:  strings.TrimSpace(in.ProductionDetails),
		PaymentInstruction: strings.TrimSpace(in.PaymentInstruction),
		Status:             in.Status,
	}
	Allocate(rpq.Items, in.InitialPaymentPercent).Apply(&rpq)

	created, err := s.repo.CreateQuotationRequest(ctx, rpq)
	if err != nil {
		return QuotationRequest{}, err
	}
	if created.ControlNumber == "" {
		created.ControlNumber = rpq.ControlNumber
	}
	s.record(ctx, "RPQ_CREATED", "quotation_request", created.ID, map[string]any{"control_number": created.ControlNumber})
	s.publish(ctx, QuotationChanged{ID: created.ID, ControlNumber: created.ControlNumber, Change: ChangeCreated, Status: created.Status})
	return created, nil
}

// UpdateQuotationRequest applies patch to a quotation that is not confirmed
// and recomputes the payment split from the full item list.
func (s *Service) UpdateQuotationRequest(ctx context.Context, id int64, patch QuotationPatch) (QuotationRequest, error) {
	release, err := s.lock(ctx, "rpq", id)
	if err != nil {
		return QuotationRequest{}, err
	}
	defer release()

	rpq, err := s.repo.GetQuotationRequest(ctx, id)
	if err != nil {
		return QuotationRequest{}, err
	}
	if !rpq.Actions().CanEdit {
		return QuotationRequest{}, rpqStateError(rpq, "edit")
	}

	var problems []string
	if patch.Items != nil {
		rpq.Items = NormalizeItems(*patch.Items)
	}
	if len(patch.ItemPatches) > 0 {
		items, err := ApplyItemPatches(rpq.Items, patch.ItemPatches)
		if err != nil {
			return QuotationRequest{}, err
		}
		rpq.Items = items
	}
	if patch.MOQ != nil {
		if *patch.MOQ < 0 {
			problems = append(problems, "MOQ cannot be negative")
		}
		rpq.MOQ = *patch.MOQ
	}
	if patch.ProductionLeadTime != nil {
		rpq.ProductionLeadTime = strings.TrimSpace(*patch.ProductionLeadTime)
	}
	if patch.ProductionDetails != nil {
		rpq.ProductionDetails = strings.TrimSpace(*patch.ProductionDetails)
	}
	if patch.PaymentInstruction != nil {
		rpq.PaymentInstruction = strings.TrimSpace(*patch.PaymentInstruction)
	}
	if patch.Status != nil {
		if p := editableStatusProblem(*patch.Status); p != "" {
			problems = append(problems, p)
		}
		rpq.Status = *patch.Status
	}
	problems = append(problems, ValidateItems(rpq.Items)...)
	if len(problems) > 0 {
		return QuotationRequest{}, invalid(problems...)
	}

	initial := rpq.InitialPaymentPercent
	if patch.InitialPaymentPercent != nil {
		initial = *patch.InitialPaymentPercent
	}
	Allocate(rpq.Items, initial).Apply(&rpq)

	updated, err := s.repo.UpdateQuotationRequest(ctx, rpq)
	if err != nil {
		return QuotationRequest{}, err
	}
	s.record(ctx, "RPQ_UPDATED", "quotation_request", id, map[string]any{
		"grand_total":     rpq.GrandTotal().String(),
		"initial_percent": rpq.InitialPaymentPercent.String(),
	})
	s.publish(ctx, QuotationChanged{ID: id, ControlNumber: rpq.ControlNumber, Change: ChangeUpdated, Status: rpq.Status})
	return updated, nil
}

// DeleteQuotationRequest removes an unconfirmed quotation and then the
// inventory request it came from. Both records are locked before anything is
// deleted. A request that is already gone counts as deleted.
func (s *Service) DeleteQuotationRequest(ctx context.Context, id int64) error {
	release, err := s.lock(ctx, "rpq", id)
	if err != nil {
		return err
	}
	defer release()

	rpq, err := s.repo.GetQuotationRequest(ctx, id)
	if err != nil {
		return err
	}
	if !rpq.Actions().CanDelete {
		return rpqStateError(rpq, "delete")
	}
	if rpq.IRRID > 0 {
		releaseIRR, err := s.lock(ctx, "irr", rpq.IRRID)
		if err != nil {
			return err
		}
		defer releaseIRR()
	}
	if err := s.repo.DeleteQuotationRequest(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "RPQ_DELETED", "quotation_request", id, map[string]any{"control_number": rpq.ControlNumber, "irr_id": rpq.IRRID})
	s.publish(ctx, QuotationChanged{ID: id, ControlNumber: rpq.ControlNumber, Change: ChangeDeleted})

	if rpq.IRRID <= 0 {
		return nil
	}
	err = s.repo.DeleteInventoryRequest(ctx, rpq.IRRID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return s.partial(ctx, &PartialTransitionError{
			Transition: "delete quotation",
			Completed:  "quotation " + rpq.ControlNumber + " deleted",
			Failed:     fmt.Sprintf("deleting inventory request %d", rpq.IRRID),
			Record:     map[string]any{"quotationId": id, "irrId": rpq.IRRID},
			Err:        err,
		}, "RPQ_DELETE_INCOMPLETE", "quotation_request", id)
	}
	s.publish(ctx, InventoryRequestChanged{ID: rpq.IRRID, Change: ChangeDeleted})
	return nil
}

// ConfirmQuotation marks a complete quotation CONFIRMED and asks the backend
// to derive the purchase order. Confirmation is not reversed if PO creation fails.
func (s *Service) ConfirmQuotation(ctx context.Context, id int64) (PurchaseOrder, error) {
	release, err := s.lock(ctx, "rpq", id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	defer release()

	rpq, err := s.repo.GetQuotationRequest(ctx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if !rpq.Status.IsEditable() {
		return PurchaseOrder{}, rpqStateError(rpq, "confirm")
	}
	if problems := rpq.ConfirmationProblems(); len(problems) > 0 {
		return PurchaseOrder{}, invalid(problems...)
	}

	if err := s.repo.SetQuotationStatus(ctx, id, RPQConfirmed); err != nil {
		return PurchaseOrder{}, err
	}
	rpq.Status = RPQConfirmed
	s.publish(ctx, QuotationChanged{ID: id, ControlNumber: rpq.ControlNumber, Change: ChangeConfirmed, Status: RPQConfirmed})

	po, err := s.repo.CreatePurchaseOrderFromQuotation(ctx, id)
	if err != nil {
		return PurchaseOrder{}, s.partial(ctx, &PartialTransitionError{
			Transition: "confirm quotation",
			Completed:  "quotation " + rpq.ControlNumber + " confirmed",
			Failed:     "creating the purchase order",
			Record:     ViewRPQ(rpq),
			Err:        err,
		}, "RPQ_CONFIRM_INCOMPLETE", "quotation_request", id)
	}
	s.record(ctx, "RPQ_CONFIRMED", "quotation_request", id, map[string]any{"purchase_order_id": po.ID})
	s.publish(ctx, PurchaseOrderChanged{ID: po.ID, ControlNumber: po.ControlNumber, Change: ChangeCreated, PaymentStatus: po.PaymentStatus})
	return po, nil
}

func rpqStateError(rpq QuotationRequest, action string) error {
	return &StateError{Entity: "quotation", ControlNumber: rpq.ControlNumber, Status: string(rpq.Status), Action: action}
}
