package procurement

import "strings"

// Actions are the operations the workflow currently allows on a record.
type Actions struct {
	CanEdit        bool `json:"canEdit"`
	CanDelete      bool `json:"canDelete"`
	CanProceed     bool `json:"canProceed,omitempty"`
	CanConfirm     bool `json:"canConfirm,omitempty"`
	CanEditPricing bool `json:"canEditPricing,omitempty"`
	CanSubmit      bool `json:"canSubmit,omitempty"`
	CanPayNow      bool `json:"canPayNow,omitempty"`
}

// Actions for an inventory request. Only PENDING requests are mutable.
func (r InventoryRequest) Actions() Actions {
	pending := r.Status == IRRPending
	return Actions{CanEdit: pending, CanDelete: pending, CanProceed: pending}
}

// ConfirmationProblems lists what keeps the quotation from being confirmed.
func (q QuotationRequest) ConfirmationProblems() []string {
	var problems []string
	if len(q.Items) == 0 {
		problems = append(problems, "at least one item is required")
	} else {
		problems = append(problems, ValidateItems(q.Items)...)
		problems = append(problems, UnpricedItems(q.Items)...)
	}
	if !q.InitialPaymentPercent.IsSet() || !q.InitialPaymentPercent.Decimal().IsPositive() {
		problems = append(problems, "initial payment percentage is required")
	} else if !q.FinalPaymentPercent.IsSet() {
		problems = append(problems, "final payment percentage is required")
	}
	if strings.TrimSpace(q.ProductionLeadTime) == "" {
		problems = append(problems, "production lead time is required")
	}
	return problems
}

// Actions for a quotation. Confirmed quotations are terminal.
func (q QuotationRequest) Actions() Actions {
	editable := q.Status.IsEditable()
	return Actions{
		CanEdit:    editable,
		CanDelete:  editable,
		CanConfirm: editable && len(q.ConfirmationProblems()) == 0,
	}
}

// AllPriced reports whether every item carries a positive unit price.
func (o PurchaseOrder) AllPriced() bool {
	return len(o.Items) > 0 && len(UnpricedItems(o.Items)) == 0
}

// Actions for a purchase order. Pricing is editable only before submission
// and before any payment.
func (o PurchaseOrder) Actions() Actions {
	pending := o.PaymentStatus == PaymentPending
	return Actions{
		CanEdit:        pending && !o.IsSubmitted,
		CanEditPricing: pending && !o.IsSubmitted,
		CanSubmit:      pending && !o.IsSubmitted && o.AllPriced(),
		CanPayNow:      o.IsSubmitted && o.PaymentStatus != FullPaid,
	}
}

// InventoryRequestView is an inventory request with its allowed actions.
type InventoryRequestView struct {
	InventoryRequest
	Actions Actions `json:"actions"`
}

// QuotationView is a quotation with its allowed actions and confirmation gaps.
type QuotationView struct {
	QuotationRequest
	Actions              Actions  `json:"actions"`
	ConfirmationProblems []string `json:"confirmationProblems"`
}

// PurchaseOrderView is a purchase order with its allowed actions.
type PurchaseOrderView struct {
	PurchaseOrder
	Actions Actions `json:"actions"`
}

// ViewIRR decorates r with its actions.
func ViewIRR(r InventoryRequest) InventoryRequestView {
	return InventoryRequestView{InventoryRequest: r, Actions: r.Actions()}
}

// ViewRPQ decorates q with its actions.
func ViewRPQ(q QuotationRequest) QuotationView {
	problems := q.ConfirmationProblems()
	if !q.Status.IsEditable() || problems == nil {
		problems = []string{}
	}
	return QuotationView{QuotationRequest: q, Actions: q.Actions(), ConfirmationProblems: problems}
}

// ViewPO decorates o with its actions.
func ViewPO(o PurchaseOrder) PurchaseOrderView {
	return PurchaseOrderView{PurchaseOrder: o, Actions: o.Actions()}
}
